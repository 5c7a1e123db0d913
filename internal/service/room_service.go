package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotel/internal/cache"
	apperrors "hotel/internal/errors"
	"hotel/internal/logging"
	"hotel/internal/model"
	"hotel/internal/repository"
)

const roomCacheTTL = 5 * time.Minute

// roomCacheEntry is a cached room stamped with the generation it was read under.
// An entry whose generation is behind the room's current one is stale and never served.
type roomCacheEntry struct {
	Generation int64      `json:"generation"`
	Room       model.Room `json:"room"`
}

func roomCacheKey(id uint) string {
	return fmt.Sprintf("room:%d", id)
}

func roomGenerationKey(id uint) string {
	return fmt.Sprintf("room:%d:gen", id)
}

// InvalidateRoomCache voids any cached copy of room id, including one a concurrent reader is about to write.
// Call it after the database change is committed.
func InvalidateRoomCache(ctx context.Context, c *cache.Client, id uint) error {
	if _, err := c.Incr(ctx, roomGenerationKey(id)); err != nil {
		return fmt.Errorf("bump room %d cache generation: %w", id, err)
	}
	return c.Delete(ctx, roomCacheKey(id))
}

// RegisterRoomInput carries a new room's details.
type RegisterRoomInput struct {
	RoomNumber    string
	RoomType      model.RoomType
	Description   *string
	PricePerNight decimal.Decimal
}

// RoomService manages the room inventory.
type RoomService interface {
	Register(ctx context.Context, in RegisterRoomInput) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	Get(ctx context.Context, id uint) (*model.Room, error)
	Update(ctx context.Context, id uint, patch model.RoomPatch) (*model.Room, error)
	Delete(ctx context.Context, id uint) (string, error)
}

type roomService struct {
	repo  repository.RoomRepository
	cache *cache.Client
	log   *logging.Logger
}

// NewRoomService builds a RoomService with repository and cache. A nil cache disables caching.
func NewRoomService(repo repository.RoomRepository, cache *cache.Client, log *logging.Logger) RoomService {
	return &roomService{repo: repo, cache: cache, log: log.With("component", "rooms")}
}

func (s *roomService) generation(ctx context.Context, id uint) int64 {
	data, _ := s.cache.Get(ctx, roomGenerationKey(id))
	if data == nil {
		return 0
	}
	gen, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return -1
	}
	return gen
}

func (s *roomService) invalidate(ctx context.Context, id uint) {
	if err := InvalidateRoomCache(ctx, s.cache, id); err != nil {
		s.log.Warn("room cache invalidation failed", "room_id", id, "error", err)
	}
}

func roomNotFound(id uint) *apperrors.Error {
	return apperrors.NotFound("Room with id %d not found", id)
}

var errRoomTaken = apperrors.Conflict("Room already registered")

var roomTypeMessage = func() string {
	names := make([]string, len(model.RoomTypes))
	for i, t := range model.RoomTypes {
		names[i] = string(t)
	}
	return "roomType must be one of " + strings.Join(names, ", ")
}()

func validateRoomType(t model.RoomType) error {
	if !t.Valid() {
		return apperrors.Invalid(roomTypeMessage)
	}
	return nil
}

// MaxPricePerNight is the largest value the decimal(10,2) price column holds.
var MaxPricePerNight = decimal.RequireFromString("99999999.99")

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperrors.Invalid("pricePerNight must not be negative")
	}
	if price.GreaterThan(MaxPricePerNight) {
		return apperrors.Invalid("pricePerNight must not exceed " + MaxPricePerNight.StringFixed(2))
	}
	return nil
}

// Register stores a new room.
func (s *roomService) Register(ctx context.Context, in RegisterRoomInput) (*model.Room, error) {
	if strings.TrimSpace(in.RoomNumber) == "" {
		return nil, apperrors.Invalid("roomNumber is required")
	}
	if err := validateRoomType(in.RoomType); err != nil {
		return nil, err
	}
	if err := validatePrice(in.PricePerNight); err != nil {
		return nil, err
	}

	room := &model.Room{
		RoomNumber:    in.RoomNumber,
		RoomType:      in.RoomType,
		Description:   in.Description,
		PricePerNight: in.PricePerNight,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, translate(err, "create room", nil, errRoomTaken)
	}

	s.invalidate(ctx, room.ID)
	s.log.Info("room registered", "room_id", room.ID, "room_number", room.RoomNumber)
	return room, nil
}

// List returns every room, read from the database on each call.
func (s *roomService) List(ctx context.Context) ([]model.Room, error) {
	rooms, err := s.repo.List(ctx)
	if err != nil {
		return nil, translate(err, "list rooms", nil, nil)
	}
	return rooms, nil
}

// Get returns a single room, served from cache when possible.
func (s *roomService) Get(ctx context.Context, id uint) (*model.Room, error) {
	// read the generation before the row so a concurrent invalidation outdates what we cache
	gen := s.generation(ctx, id)

	var entry roomCacheEntry
	if gen >= 0 && s.cache.GetJSON(ctx, roomCacheKey(id), &entry) && entry.Generation == gen {
		return &entry.Room, nil
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "find room", roomNotFound(id), nil)
	}

	if gen >= 0 {
		s.cache.SetJSON(ctx, roomCacheKey(id), roomCacheEntry{Generation: gen, Room: *room}, roomCacheTTL)
	}
	return room, nil
}

// Update applies a partial update to a room.
func (s *roomService) Update(ctx context.Context, id uint, patch model.RoomPatch) (*model.Room, error) {
	if patch.RoomNumber != nil && strings.TrimSpace(*patch.RoomNumber) == "" {
		return nil, apperrors.Invalid("roomNumber must not be empty")
	}
	if patch.RoomType != nil {
		if err := validateRoomType(*patch.RoomType); err != nil {
			return nil, err
		}
	}
	if patch.PricePerNight != nil {
		if err := validatePrice(*patch.PricePerNight); err != nil {
			return nil, err
		}
	}

	room, err := s.repo.Update(ctx, id, func(r *model.Room) error {
		patch.ApplyTo(r)
		return nil
	})
	if err != nil {
		return nil, translate(err, "update room", roomNotFound(id), errRoomTaken)
	}

	s.invalidate(ctx, id)
	s.log.Info("room updated", "room_id", id)
	return room, nil
}

// Delete removes a room.
func (s *roomService) Delete(ctx context.Context, id uint) (string, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", translate(err, "delete room", roomNotFound(id), nil)
	}

	s.invalidate(ctx, id)
	s.log.Info("room deleted", "room_id", id)
	return fmt.Sprintf("Room with id %d deleted", id), nil
}
