package databases

//go generate: mockery --name Tier

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caseworks/appraisal-case-api/config"
)

// ErrTierMiss is returned by a tier read when the key holds nothing.
var ErrTierMiss = errors.New("tier miss")

// Tier is one key-value persistence backend the case document is mirrored
// to. Tiers are written independently; only the primary tier's failure is
// fatal to a persist.
type Tier interface {
	Name() string
	Put(ctx context.Context, key string, payload []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// sessionTTL bounds the redis-backed tiers; they play the role of the
// original per-session storage. The mongo mirror is the durable copy.
const sessionTTL = 24 * time.Hour

type redisTier struct {
	name   string
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTier builds a named tier on the shared redis connection.
func NewRedisTier(name string, client *redis.Client) Tier {
	return &redisTier{name: name, client: client, ttl: sessionTTL}
}

// NewRedisClient dials redis from the configured URI.
func NewRedisClient(conf *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(conf.RedisURI)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func (t *redisTier) Name() string { return t.name }

func (t *redisTier) Put(ctx context.Context, key string, payload []byte) error {
	return t.client.Set(ctx, key, payload, t.ttl).Err()
}

func (t *redisTier) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := t.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTierMiss
	}
	return b, err
}
