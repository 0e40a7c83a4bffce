package redisclient

import (
	"context"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/marketplace/base/backoff"
	"github.com/x-xyz/marketplace/base/log"
)

const (
	dialTimeout  = 2 * time.Second
	readTimeout  = 1500 * time.Millisecond
	writeTimeout = 1500 * time.Millisecond
	idleTimeout  = 4 * time.Minute

	defaultMaxIdle   = 64
	defaultMaxActive = 256
)

type Config struct {
	URI      string
	Password string
	// PoolMultiplier times the cpu count is the active pool size, a quarter
	// of it may stay idle
	PoolMultiplier float64
	// Retries of the first dial, pods sometimes start before their network
	Retries int
}

func (cfg Config) pool() *redis.Pool {
	maxIdle, maxActive := defaultMaxIdle, defaultMaxActive
	if cfg.PoolMultiplier > 0 {
		maxActive = int(float64(runtime.NumCPU()) * cfg.PoolMultiplier)
		maxIdle = maxActive / 4
	}

	opts := []redis.DialOption{
		redis.DialConnectTimeout(dialTimeout),
		redis.DialReadTimeout(readTimeout),
		redis.DialWriteTimeout(writeTimeout),
	}
	if cfg.Password != "" {
		opts = append(opts, redis.DialPassword(cfg.Password))
	}

	return &redis.Pool{
		MaxIdle:     maxIdle,
		MaxActive:   maxActive,
		Wait:        true,
		IdleTimeout: idleTimeout,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", cfg.URI, opts...)
		},
		TestOnBorrow: func(c redis.Conn, lastUsed time.Time) error {
			if time.Since(lastUsed) < time.Second {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// MustConnect panics if redis is unreachable after the retries
func MustConnect(cfg Config) *redis.Pool {
	p, err := Connect(context.Background(), cfg)
	if err != nil {
		log.Log().WithFields(log.Fields{"redisURI": cfg.URI, "err": err}).Panic("redisclient.Connect failed")
	}
	return p
}

// Connect builds the pool and makes sure one connection answers PING
func Connect(ctx context.Context, cfg Config) (*redis.Pool, error) {
	p := cfg.pool()
	bo := backoff.NewExponential(clock.New(), time.Second, 8*time.Second)

	var err error
	for attempt := 0; ; attempt++ {
		if err = ping(ctx, p); err == nil {
			break
		}
		log.Log().WithFields(log.Fields{
			"redisURI": cfg.URI,
			"err":      err,
			"attempt":  attempt,
		}).Error("redis ping failed")
		if attempt >= cfg.Retries {
			p.Close()
			return nil, err
		}
		if werr := bo.Wait(ctx); werr != nil {
			p.Close()
			return nil, werr
		}
	}

	log.Log().WithField("redisURI", cfg.URI).Info("redis connected")
	return p, nil
}

func ping(ctx context.Context, p *redis.Pool) error {
	conn, err := p.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Do("PING")
	return err
}
