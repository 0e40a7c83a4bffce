package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/domain/keys"
	"github.com/x-xyz/marketplace/service/cache/provider"
)

type impl struct {
	pool   *redis.Pool
	prefix string
}

// NewRedis stores entries in redis so replicas sharing pool see the same
// entries. A non empty prefix namespaces the keys.
func NewRedis(pool *redis.Pool, prefix string) provider.Provider {
	return &impl{pool: pool, prefix: prefix}
}

func (im *impl) key(key string) string {
	if im.prefix == "" {
		return key
	}
	return keys.RedisKey(im.prefix, key)
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	conn, err := im.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return nil, 0, err
	}
	defer conn.Close()

	// one round trip for the value and its remaining ttl
	if err := conn.Send("MULTI"); err != nil {
		return nil, 0, err
	}
	conn.Send("GET", im.key(key))
	conn.Send("PTTL", im.key(key))
	res, err := redis.Values(conn.Do("EXEC"))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("redis GET failed")
		return nil, 0, err
	}

	val, err := redis.Bytes(res[0], nil)
	if err == redis.ErrNil {
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		return nil, 0, err
	}
	pttl, err := redis.Int64(res[1], nil)
	if err != nil {
		return nil, 0, err
	}
	if pttl < 0 {
		// -1 no expiry
		return val, 0, nil
	}
	return val, time.Duration(pttl) * time.Millisecond, nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	conn, err := im.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return err
	}
	defer conn.Close()

	args := redis.Args{im.key(key), value}
	if ttl > 0 {
		args = args.Add("PX", ttl.Milliseconds())
	}
	if _, err := conn.Do("SET", args...); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("redis SET failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	conn, err := im.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return err
	}
	defer conn.Close()

	if _, err := conn.Do("DEL", im.key(key)); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("redis DEL failed")
		return err
	}
	return nil
}
