package cache

import (
	"emsbot/internal/common"
	"fmt"
	"time"

	"github.com/go-redis/redis/v7"
)

const (
	DefaultNetworkTimeout     = 5 * time.Second
	DefaultNetworkIdleTimeout = 30 * time.Second
)

// InitRedisOpts configures the InitRedis method
type InitRedisOpts struct {
	Addr        string
	Username    string
	Password    string
	ServiceLogs chan<- common.ServiceLog
}

// InitRedis initialises a singleton instance of a redis-backed cache,
// verifying connectivity with a ping before committing to it
func InitRedis(opts InitRedisOpts) error {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           0,
		DialTimeout:  DefaultNetworkTimeout,
		ReadTimeout:  DefaultNetworkTimeout,
		WriteTimeout: DefaultNetworkTimeout,
		IdleTimeout:  DefaultNetworkIdleTimeout,
	})
	if err := client.Ping().Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at addr[%s]: %v", opts.Addr, err)
	}
	instance = &redisCache{
		client:      client,
		serviceLogs: serviceLogs,
	}
	return nil
}

type redisCache struct {
	client      *redis.Client
	serviceLogs chan<- common.ServiceLog
}

func (c *redisCache) Set(key string, value string, ttl time.Duration) error {
	status := c.client.Set(key, value, ttl)
	if status.Err() != nil {
		return fmt.Errorf("failed to set key[%s]: %s", key, status.Err())
	}
	c.serviceLogs <- common.ServiceLogf(common.LogLevelDebug, "set key[%s] response: %s", key, status.String())
	return nil
}

func (c *redisCache) Get(key string) (string, error) {
	response := c.client.Get(key)
	if response.Err() != nil {
		return "", fmt.Errorf("failed to get key[%s]: %s", key, response.Err())
	}
	return response.Val(), nil
}

func (c *redisCache) Scan(prefix string) ([]string, error) {
	response := c.client.Keys(prefix + "*")
	if response.Err() != nil {
		return nil, fmt.Errorf("failed to list keys[%s]: %s", prefix, response.Err())
	}
	keys := response.Val()
	c.serviceLogs <- common.ServiceLogf(common.LogLevelDebug, "found %v keys[%s]", len(keys), prefix)
	return keys, nil
}

func (c *redisCache) Del(key string) error {
	response := c.client.Unlink(key)
	if response.Err() != nil {
		return fmt.Errorf("failed to delete key[%s]: %s", key, response.Err())
	}
	return nil
}
