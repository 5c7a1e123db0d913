package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hotel/internal/auth"
	"hotel/internal/cache"
	"hotel/internal/model"
	"hotel/internal/repository"
	"hotel/internal/service"
)

// AdminSeed describes the bootstrap administrator.
type AdminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RoomSeed is one entry of the rooms JSON document.
type RoomSeed struct {
	RoomNumber    string          `json:"roomNumber"`
	RoomType      string          `json:"roomType"`
	Description   *string         `json:"description"`
	PricePerNight decimal.Decimal `json:"pricePerNight"`
}

// SeedResult counts what seedRooms did.
// StaleCache counts rooms written whose cached copy could not be invalidated.
type SeedResult struct {
	Created    int
	Updated    int
	Skipped    int
	StaleCache int
}

// seedAdmin creates the admin account, or promotes and resets the existing one with that email.
func seedAdmin(ctx context.Context, repo repository.UserRepository, hasher auth.PasswordHasher, admin AdminSeed) (created bool, err error) {
	hashed, err := hasher.Hash(admin.Password)
	if err != nil {
		return false, err
	}

	existing, err := repo.FindByEmail(ctx, admin.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("error checking user %s: %w", admin.Email, err)
	}

	if existing != nil {
		_, err := repo.Update(ctx, existing.ID, func(u *model.User) error {
			u.PasswordHash = hashed
			u.FirstName = admin.FirstName
			u.LastName = admin.LastName
			u.IsAdmin = true
			return nil
		})
		if err != nil {
			return false, fmt.Errorf("error updating user %s: %w", admin.Email, err)
		}
		return false, nil
	}

	user := &model.User{
		Email:        admin.Email,
		PasswordHash: hashed,
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		IsAdmin:      true,
	}
	if err := repo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("error creating user %s: %w", admin.Email, err)
	}
	return true, nil
}

// seedRooms upserts rooms by room number and invalidates the cached copy of each written room.
// Invalid entries are skipped. A nil roomCache skips invalidation.
func seedRooms(ctx context.Context, repo repository.RoomRepository, roomCache *cache.Client, rooms []RoomSeed) (SeedResult, error) {
	var result SeedResult
	invalidate := func(id uint) {
		if err := service.InvalidateRoomCache(ctx, roomCache, id); err != nil {
			result.StaleCache++
		}
	}

	for _, item := range rooms {
		roomType := model.RoomType(strings.ToUpper(item.RoomType))
		if item.RoomNumber == "" || !roomType.Valid() ||
			item.PricePerNight.IsNegative() || item.PricePerNight.GreaterThan(service.MaxPricePerNight) {
			result.Skipped++
			continue
		}

		existing, err := repo.FindByRoomNumber(ctx, item.RoomNumber)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, fmt.Errorf("error checking room %s: %w", item.RoomNumber, err)
		}

		if existing != nil {
			_, err := repo.Update(ctx, existing.ID, func(r *model.Room) error {
				r.RoomType = roomType
				r.Description = item.Description
				r.PricePerNight = item.PricePerNight
				return nil
			})
			if err != nil {
				return result, fmt.Errorf("error updating room %s: %w", item.RoomNumber, err)
			}
			invalidate(existing.ID)
			result.Updated++
			continue
		}

		room := &model.Room{
			RoomNumber:    item.RoomNumber,
			RoomType:      roomType,
			Description:   item.Description,
			PricePerNight: item.PricePerNight,
		}
		if err := repo.Create(ctx, room); err != nil {
			return result, fmt.Errorf("error creating room %s: %w", item.RoomNumber, err)
		}
		invalidate(room.ID)
		result.Created++
	}
	return result, nil
}

// loadRooms reads the rooms document from a local file or an http(s) URL.
func loadRooms(ctx context.Context, source string) ([]RoomSeed, error) {
	var body []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = fetch(ctx, source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var rooms []RoomSeed
	if err := json.Unmarshal(body, &rooms); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return rooms, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rooms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rooms source returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
