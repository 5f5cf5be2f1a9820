package cart

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps anonymous session carts as redis hashes
// (cart:{session} -> product id -> quantity). Guest carts are ephemeral:
// losing them never violates an order-side invariant, so a TTL-backed
// key-value store is enough. There are no row ids here — the product id
// doubles as the line item id.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

const defaultGuestTTL = 14 * 24 * time.Hour

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: defaultGuestTTL}
}

func key(owner string) string { return "cart:" + owner }

func (s *RedisStore) Items(ctx context.Context, owner string) ([]LineItem, error) {
	raw, err := s.rdb.HGetAll(ctx, key(owner)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids) // HGetAll order is not stable

	var out []LineItem
	for _, id := range ids {
		qty, err := strconv.Atoi(raw[id])
		if err != nil || qty <= 0 {
			continue
		}
		out = append(out, LineItem{ID: id, OwnerKey: owner, ProductID: id, Quantity: qty})
	}
	return out, nil
}

func (s *RedisStore) AddItem(ctx context.Context, owner, productID string, qty int) (*LineItem, error) {
	total, err := s.rdb.HIncrBy(ctx, key(owner), productID, int64(qty)).Result()
	if err != nil {
		return nil, err
	}
	s.rdb.Expire(ctx, key(owner), s.ttl)
	return &LineItem{ID: productID, OwnerKey: owner, ProductID: productID, Quantity: int(total)}, nil
}

func (s *RedisStore) SetQuantity(ctx context.Context, owner, itemID string, qty int) error {
	exists, err := s.rdb.HExists(ctx, key(owner), itemID).Result()
	if err != nil {
		return err
	}
	if !exists {
		return ErrItemNotFound
	}
	if qty <= 0 {
		return s.rdb.HDel(ctx, key(owner), itemID).Err()
	}
	if err := s.rdb.HSet(ctx, key(owner), itemID, qty).Err(); err != nil {
		return err
	}
	s.rdb.Expire(ctx, key(owner), s.ttl)
	return nil
}

func (s *RedisStore) RemoveItem(ctx context.Context, owner, itemID string) error {
	n, err := s.rdb.HDel(ctx, key(owner), itemID).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, owner string) error {
	return s.rdb.Del(ctx, key(owner)).Err()
}
