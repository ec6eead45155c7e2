package cache

import (
	"time"
)

var instance Cache

// Cache is the key/value store used for the request ledger; the
// in-memory implementation is the default, redis is opt-in
type Cache interface {
	Set(key string, value string, ttl time.Duration) (err error)
	Get(key string) (value string, err error)
	Scan(prefix string) (keys []string, err error)
	Del(key string) (err error)
}

func Get() Cache {
	return instance
}
