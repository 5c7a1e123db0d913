package repository

import (
	"context"

	"gorm.io/gorm"

	"hotel/internal/model"
)

// RoomRepository defines room persistence operations.
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, id uint) (*model.Room, error)
	FindByRoomNumber(ctx context.Context, roomNumber string) (*model.Room, error)
	// List returns every room ordered by id. The result is never nil.
	List(ctx context.Context) ([]model.Room, error)
	Update(ctx context.Context, id uint, apply func(*model.Room) error) (*model.Room, error)
	Delete(ctx context.Context, id uint) error
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// Create creates a new room.
func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// FindByID finds a room by ID.
func (r *roomRepository) FindByID(ctx context.Context, id uint) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByRoomNumber finds a room by its unique room number.
func (r *roomRepository) FindByRoomNumber(ctx context.Context, roomNumber string) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Where("room_number = ?", roomNumber).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) List(ctx context.Context) ([]model.Room, error) {
	rooms := make([]model.Room, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&rooms).Error; err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	return rooms, nil
}

// Update applies apply to the locked row and saves it within a transaction.
func (r *roomRepository) Update(ctx context.Context, id uint, apply func(*model.Room) error) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&room, id).Error; err != nil {
			return err
		}
		if err := apply(&room); err != nil {
			return err
		}
		return tx.Save(&room).Error
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Delete removes a room in a single statement.
func (r *roomRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(r.db.WithContext(ctx), &model.Room{}, id)
}
