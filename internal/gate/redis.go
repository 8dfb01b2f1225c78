package gate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultGateKey  = "stock-news-analyzer:run-gate"
	defaultPollWait = 250 * time.Millisecond
)

// Deletes the key only while it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`

// Extends the key's TTL (ARGV[2], milliseconds) only while it still holds our token.
const renewScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("PEXPIRE", KEYS[1], ARGV[2]) end return 0`

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// Connect opens and pings a Redis client for addr, which may be a bare
// host:port or a redis:// / rediss:// URL.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Println("Connected to Redis")
	return client, nil
}

// locker is the slice of the Redis API the gate needs.
type locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisGate is a lease held in a single Redis key. The holder renews the lease
// every ttl/3 until release, so the TTL only bounds how long a crashed holder
// can block other replicas, not how long a run may take.
type RedisGate struct {
	client     locker
	key        string
	ttl        time.Duration
	pollWait   time.Duration
	renewEvery time.Duration
	newToken   func() string
}

func NewRedisGate(client locker, ttl time.Duration) *RedisGate {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	renewEvery := ttl / 3
	if renewEvery <= 0 {
		renewEvery = ttl
	}
	return &RedisGate{
		client:     client,
		key:        defaultGateKey,
		ttl:        ttl,
		pollWait:   defaultPollWait,
		renewEvery: renewEvery,
		newToken:   uuid.NewString,
	}
}

func (g *RedisGate) Acquire(ctx context.Context) (func(), error) {
	token := g.newToken()
	for {
		ok, err := g.client.SetNX(ctx, g.key, token, g.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire run gate: %w", err)
		}
		if ok {
			return g.releaser(token), nil
		}

		timer := time.NewTimer(g.pollWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (g *RedisGate) releaser(token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go g.keepAlive(token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// The run's own context may already be done.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := g.client.Eval(ctx, releaseScript, []string{g.key}, token).Err(); err != nil {
				log.Printf("failed to release run gate: %v", err)
			}
		})
	}
}

// keepAlive renews the lease until stop is closed or the lease is lost.
func (g *RedisGate) keepAlive(token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(g.renewEvery)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), g.renewEvery)
		renewed, err := g.client.Eval(ctx, renewScript, []string{g.key}, token, g.ttl.Milliseconds()).Int64()
		cancel()
		if err != nil {
			log.Printf("failed to renew run gate: %v", err)
			continue
		}
		if renewed == 0 {
			log.Println("Warning: run gate lease lost before release")
			return
		}
	}
}
