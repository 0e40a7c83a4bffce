package repository

import (
	"github.com/gomodule/redigo/redis"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/database/mongoclient"
	"github.com/x-xyz/marketplace/domain"
	hcdomain "github.com/x-xyz/marketplace/domain/healthcheck"
	"github.com/x-xyz/marketplace/domain/keys"
	"github.com/x-xyz/marketplace/domain/ledger"
)

type pingFunc struct {
	name string
	ping func(ctx.Ctx) error
}

func (p pingFunc) Name() string         { return p.name }
func (p pingFunc) Ping(c ctx.Ctx) error { return p.ping(c) }

// Pingers returns a pinger for every configured backend, nil ones are skipped
func Pingers(mgoClient *mongoclient.Client, redisPool *redis.Pool, led ledger.Ledger, escrow domain.Address) []hcdomain.Pinger {
	var res []hcdomain.Pinger
	if mgoClient != nil {
		res = append(res, Mongo(mgoClient))
	}
	if redisPool != nil {
		res = append(res, Redis(redisPool))
	}
	if led != nil {
		res = append(res, Ledger(led, escrow))
	}
	return res
}

func Mongo(client *mongoclient.Client) hcdomain.Pinger {
	return pingFunc{name: "mongo", ping: func(c ctx.Ctx) error {
		return client.Ping(c, readpref.Primary())
	}}
}

// Redis checks that the pool can write, a read-only replica fails it
func Redis(pool *redis.Pool) hcdomain.Pinger {
	return pingFunc{name: "redis", ping: func(c ctx.Ctx) error {
		conn, err := pool.GetContext(c)
		if err != nil {
			return err
		}
		defer conn.Close()
		_, err = conn.Do("SET", keys.RedisKey(keys.PfxHealthCheck, "testset"), "1", "EX", 30)
		return err
	}}
}

// Ledger checks that the escrow balance can be read
func Ledger(led ledger.Ledger, escrow domain.Address) hcdomain.Pinger {
	return pingFunc{name: "ledger", ping: func(c ctx.Ctx) error {
		_, err := led.Balance(c, escrow)
		return err
	}}
}
