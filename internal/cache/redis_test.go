package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/logger"
)

func testRegions() []*models.Region {
	return []*models.Region{
		{ID: "r1", StartX: 0, StartY: 0, Width: 10, Height: 10, OwnerWallet: "wallet-a", PriceCharged: 100},
		{ID: "r2", StartX: 20, StartY: 0, Width: 10, Height: 10, OwnerWallet: "wallet-b", PriceCharged: 100},
	}
}

func TestGetRegions(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewRedisCache(client, time.Second, logger.NewNopLogger())

		data, err := json.Marshal(testRegions())
		require.NoError(t, err)
		mock.ExpectGet(KeyRegions).SetVal(string(data))

		regions, ok := cache.GetRegions(ctx)
		require.True(t, ok)
		require.Len(t, regions, 2)
		assert.Equal(t, "r1", regions[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewRedisCache(client, time.Second, logger.NewNopLogger())

		mock.ExpectGet(KeyRegions).RedisNil()

		_, ok := cache.GetRegions(ctx)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure reads as a miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewRedisCache(client, time.Second, logger.NewNopLogger())

		mock.ExpectGet(KeyRegions).SetErr(errors.New("connection refused"))

		_, ok := cache.GetRegions(ctx)
		assert.False(t, ok)
	})

	t.Run("corrupt payload reads as a miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewRedisCache(client, time.Second, logger.NewNopLogger())

		mock.ExpectGet(KeyRegions).SetVal("{not json")

		_, ok := cache.GetRegions(ctx)
		assert.False(t, ok)
	})
}

func TestSetRegions(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisCache(client, 5*time.Second, logger.NewNopLogger())

	data, err := json.Marshal(testRegions())
	require.NoError(t, err)
	mock.ExpectSet(KeyRegions, data, 5*time.Second).SetVal("OK")

	cache.SetRegions(context.Background(), testRegions())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisCache(client, time.Second, logger.NewNopLogger())

	mock.ExpectDel(KeyRegions).SetVal(1)

	cache.Invalidate(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}
