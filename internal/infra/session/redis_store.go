package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"app/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// キー
// session:{sid}:cart   -> hash(product_id -> qty)
// session:{sid}:buynow -> json(BuyNowSelection)
const (
	keyGuestCart = "session:%s:cart"
	keyBuyNow    = "session:%s:buynow"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
}

// 書き込みのたびにTTLを延ばす
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) GuestCart(ctx context.Context, sessionID string) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, fmt.Sprintf(keyGuestCart, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	cart := make(map[string]int64, len(raw))
	for productID, v := range raw {
		qty, err := strconv.ParseInt(v, 10, 64)
		if err != nil || qty < 1 {
			continue
		}
		cart[productID] = qty
	}
	return cart, nil
}

func (s *RedisStore) IncrGuestItem(ctx context.Context, sessionID string, productID string, delta int64) (int64, error) {
	key := fmt.Sprintf(keyGuestCart, sessionID)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.HIncrBy(ctx, key, productID, delta)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis hincrby failed: %w", err)
	}

	// 保存値は上限以下なので加算でint64があふれることはない
	qty := incr.Val()
	if qty > model.MaxLineQuantity {
		qty = model.MaxLineQuantity
		if err := s.client.HSet(ctx, key, productID, qty).Err(); err != nil {
			return 0, fmt.Errorf("redis hset failed: %w", err)
		}
	}
	return qty, nil
}

func (s *RedisStore) SetGuestItem(ctx context.Context, sessionID string, productID string, qty int64) error {
	key := fmt.Sprintf(keyGuestCart, sessionID)

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, productID, qty)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset failed: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveGuestItem(ctx context.Context, sessionID string, productID string) error {
	key := fmt.Sprintf(keyGuestCart, sessionID)

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, key, productID)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hdel failed: %w", err)
	}
	return nil
}

func (s *RedisStore) ClearGuestCart(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, fmt.Sprintf(keyGuestCart, sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *RedisStore) SetBuyNow(ctx context.Context, sessionID string, sel model.BuyNowSelection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal buy-now failed: %w", err)
	}
	if err := s.client.Set(ctx, fmt.Sprintf(keyBuyNow, sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// GETDELで読むと同時に消す
func (s *RedisStore) TakeBuyNow(ctx context.Context, sessionID string) (model.BuyNowSelection, bool, error) {
	data, err := s.client.GetDel(ctx, fmt.Sprintf(keyBuyNow, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.BuyNowSelection{}, false, nil
	}
	if err != nil {
		return model.BuyNowSelection{}, false, fmt.Errorf("redis getdel failed: %w", err)
	}

	var sel model.BuyNowSelection
	if err := json.Unmarshal(data, &sel); err != nil {
		// 壊れた値は無かったことにする（もう消えている）
		return model.BuyNowSelection{}, false, nil
	}
	return sel, true, nil
}
