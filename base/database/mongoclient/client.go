package mongoclient

import (
	"context"
	"crypto/tls"
	"runtime"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/x-xyz/marketplace/base/log"
)

const (
	socketTimeout  = 60 * time.Second
	connectTimeout = 10 * time.Second
)

// Config of a mongo deployment, AuthDB is used when the uri has no authSource
type Config struct {
	URI    string
	AuthDB string
	DB     string
	TLS    bool
	// Majority waits for a majority of the replica set on every write
	Majority bool
	// PoolMultiplier times the cpu count is the pool size over all hosts
	PoolMultiplier float64
}

// Client wraps mongo.Client with the database it serves
type Client struct {
	DbName string
	*mongo.Client
}

// MustConnect panics if the deployment is unreachable
func MustConnect(cfg Config) *Client {
	cli, err := Connect(cfg)
	if err != nil {
		log.Log().WithFields(log.Fields{"db": cfg.DB, "err": err}).Panic("mongoclient.Connect failed")
	}
	return cli
}

func Connect(cfg Config) (*Client, error) {
	logger := log.Log().WithField("db", cfg.DB)

	cs, err := connstring.Parse(cfg.URI)
	if err != nil {
		logger.WithField("err", err).Error("connstring.Parse failed")
		return nil, err
	}

	opts := options.Client().ApplyURI(cfg.URI).SetSocketTimeout(socketTimeout).SetRetryWrites(true)
	if cs.Username != "" && cs.AuthSource == "" {
		opts.SetAuth(options.Credential{
			AuthMechanism:           cs.AuthMechanism,
			AuthMechanismProperties: cs.AuthMechanismProperties,
			Username:                cs.Username,
			Password:                cs.Password,
			PasswordSet:             cs.PasswordSet,
			AuthSource:              cfg.AuthDB,
		})
	}
	if size := poolSize(cfg.PoolMultiplier, len(cs.Hosts)); size > 0 {
		opts.SetMaxPoolSize(size).SetMinPoolSize(size / 4)
		logger = logger.WithField("poolSize", size)
	}
	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{})
	}
	if cfg.Majority {
		opts.SetWriteConcern(writeconcern.New(writeconcern.WMajority()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.WithFields(log.Fields{"hosts": cs.Hosts, "err": err}).Error("mongo.Connect failed")
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.WithFields(log.Fields{"hosts": cs.Hosts, "err": err}).Error("client.Ping failed")
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.WithField("hosts", cs.Hosts).Info("mongo connected")
	return &Client{DbName: cfg.DB, Client: client}, nil
}

// poolSize splits the total pool over the hosts, every host keeps its own pool
func poolSize(multiplier float64, hosts int) uint64 {
	if multiplier <= 0 || hosts == 0 {
		return 0
	}
	total := int(float64(runtime.NumCPU()) * multiplier)
	per := (total + hosts - 1) / hosts
	if per < 1 {
		per = 1
	}
	return uint64(per)
}
