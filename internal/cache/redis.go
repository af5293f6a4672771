package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mahirTaj/BashaLagbe-sub000/config"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds the public per-listing slot view. The view is rebuilt
// from committed rows on a miss and dropped on every mutation of the
// listing's slots or bookings, so booked counts never go stale beyond TTL.
type RedisCache struct {
	client   *redis.Client
	slotsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, slotsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		slotsTTL: slotsTTL,
	}
}

func (c *RedisCache) GetSlotViews(ctx context.Context, listingID int64) ([]domain.SlotView, error) {
	data, err := c.client.Get(ctx, slotsKey(listingID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var views []domain.SlotView
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (c *RedisCache) SetSlotViews(ctx context.Context, listingID int64, views []domain.SlotView) error {
	payload, err := json.Marshal(views)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, slotsKey(listingID), payload, c.slotsTTL).Err()
}

func (c *RedisCache) InvalidateSlotViews(ctx context.Context, listingID int64) error {
	return c.client.Del(ctx, slotsKey(listingID)).Err()
}

func slotsKey(listingID int64) string {
	return fmt.Sprintf("cache:listing:%d:slots", listingID)
}
