package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotel/internal/auth"
	"hotel/internal/cache"
	"hotel/internal/config"
	"hotel/internal/db"
	"hotel/internal/logging"
	"hotel/internal/model"
	"hotel/internal/repository"
	"hotel/internal/service"
)

const roomsJSON = `[
	{"roomNumber": "101", "roomType": "single", "pricePerNight": 100},
	{"roomNumber": "102", "roomType": "SUITE", "description": "top floor", "pricePerNight": "250.75"},
	{"roomNumber": "103", "roomType": "CASTLE", "pricePerNight": 10},
	{"roomNumber": "104", "roomType": "TWIN", "pricePerNight": -1}
]`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "seed.db")}, "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gormDB) })
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func TestLoadRooms_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.json")
	require.NoError(t, os.WriteFile(path, []byte(roomsJSON), 0o600))

	rooms, err := loadRooms(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rooms, 4)
	assert.True(t, rooms[1].PricePerNight.Equal(decimal.RequireFromString("250.75")))
	assert.Equal(t, "top floor", *rooms[1].Description)
}

func TestLoadRooms_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rooms.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(roomsJSON))
	}))
	defer srv.Close()

	rooms, err := loadRooms(context.Background(), srv.URL+"/rooms.json")
	require.NoError(t, err)
	assert.Len(t, rooms, 4)

	_, err = loadRooms(context.Background(), srv.URL+"/missing.json")
	assert.ErrorContains(t, err, "status code: 404")
}

func TestLoadRooms_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := loadRooms(context.Background(), path)
	assert.ErrorContains(t, err, "failed to parse JSON")
}

func TestSeedRooms_Upserts(t *testing.T) {
	gormDB := openTestDB(t)
	repo := repository.NewRoomRepository(gormDB)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "rooms.json")
	require.NoError(t, os.WriteFile(path, []byte(roomsJSON), 0o600))
	rooms, err := loadRooms(ctx, path)
	require.NoError(t, err)

	first, err := seedRooms(ctx, repo, nil, rooms)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 2, Skipped: 2}, first)

	rooms[0].PricePerNight = decimal.NewFromInt(110)
	second, err := seedRooms(ctx, repo, nil, rooms)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Updated: 2, Skipped: 2}, second)

	stored, err := repo.FindByRoomNumber(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "SINGLE", string(stored.RoomType))
	assert.True(t, stored.PricePerNight.Equal(decimal.NewFromInt(110)))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSeedRooms_InvalidatesRoomCache(t *testing.T) {
	mr := miniredis.RunT(t)
	roomCache, err := cache.Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = roomCache.Close() })

	repo := repository.NewRoomRepository(openTestDB(t))
	svc := service.NewRoomService(repo, roomCache, logging.Nop())
	ctx := context.Background()

	rooms := []RoomSeed{{RoomNumber: "301", RoomType: "DOUBLE", PricePerNight: decimal.NewFromInt(90)}}
	_, err = seedRooms(ctx, repo, roomCache, rooms)
	require.NoError(t, err)

	stored, err := repo.FindByRoomNumber(ctx, "301")
	require.NoError(t, err)
	cached, err := svc.Get(ctx, stored.ID)
	require.NoError(t, err)
	require.True(t, cached.PricePerNight.Equal(decimal.NewFromInt(90)))
	require.True(t, mr.Exists(fmt.Sprintf("room:%d", stored.ID)))

	rooms[0].PricePerNight = decimal.NewFromInt(95)
	result, err := seedRooms(ctx, repo, roomCache, rooms)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Updated: 1}, result)

	fresh, err := svc.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, fresh.PricePerNight.Equal(decimal.NewFromInt(95)), "got %s", fresh.PricePerNight)
}

func TestSeedRooms_SkipsPriceAboveColumnRange(t *testing.T) {
	repo := repository.NewRoomRepository(openTestDB(t))

	result, err := seedRooms(context.Background(), repo, nil, []RoomSeed{
		{RoomNumber: "401", RoomType: "SUITE", PricePerNight: decimal.RequireFromString("99999999.99")},
		{RoomNumber: "402", RoomType: "SUITE", PricePerNight: decimal.RequireFromString("100000000")},
	})
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 1, Skipped: 1}, result)
}

func TestSeedAdmin_CreatesThenPromotes(t *testing.T) {
	gormDB := openTestDB(t)
	repo := repository.NewUserRepository(gormDB)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	ctx := context.Background()

	admin := AdminSeed{Email: "root@hotel.test", Password: "first", FirstName: "Root", LastName: "Admin"}
	created, err := seedAdmin(ctx, repo, hasher, admin)
	require.NoError(t, err)
	assert.True(t, created)

	stored, err := repo.FindByEmail(ctx, admin.Email)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)
	assert.True(t, hasher.Verify("first", stored.PasswordHash))

	// demote, then seed again with a new password
	_, err = repo.Update(ctx, stored.ID, func(u *model.User) error {
		u.IsAdmin = false
		return nil
	})
	require.NoError(t, err)

	admin.Password = "second"
	created, err = seedAdmin(ctx, repo, hasher, admin)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err = repo.FindByEmail(ctx, admin.Email)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)
	assert.True(t, hasher.Verify("second", stored.PasswordHash))
}
