// Package cache is a read-through cache of json encoded values on top of a
// raw byte provider.
package cache

import (
	"errors"
	"time"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/service/cache/provider"
)

var (
	ErrNotFound = errors.New("Cache not found")
)

// Loader produces the value for a missing key. Returning ErrNotFound, or
// any error, leaves the key uncached.
type Loader func() (interface{}, error)

type Serializer func(interface{}) ([]byte, error)

type Deserializer func([]byte, interface{}) error

type Service interface {
	// GetOrLoad fills container from the cache, or from load on a miss
	GetOrLoad(c ctx.Ctx, key string, container interface{}, load Loader) error
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
}

type ServiceConfig struct {
	// Ttl 0 keeps entries until evicted
	Ttl         time.Duration
	Pfx         string
	Cache       provider.Provider
	Serialize   Serializer
	Deserialize Deserializer
}
