package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// InitMemory initialises a singleton instance of an in-memory cache
func InitMemory() {
	instance = &memoryCache{
		items: map[string]memoryItem{},
	}
}

type memoryItem struct {
	value     string
	expiresAt time.Time
}

type memoryCache struct {
	items map[string]memoryItem
	mutex sync.RWMutex
}

func (c *memoryCache) Set(key string, value string, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	c.items[key] = item
	return nil
}

func (c *memoryCache) Get(key string) (string, error) {
	c.mutex.RLock()
	item, ok := c.items[key]
	c.mutex.RUnlock()
	if !ok {
		return "", fmt.Errorf("failed to get key[%s]: not found", key)
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		c.mutex.Lock()
		delete(c.items, key)
		c.mutex.Unlock()
		return "", fmt.Errorf("failed to get key[%s]: expired", key)
	}
	return item.value, nil
}

func (c *memoryCache) Scan(prefix string) ([]string, error) {
	prefix = strings.TrimSuffix(prefix, "*")
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	keys := []string{}
	now := time.Now()
	for key, item := range c.items {
		if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (c *memoryCache) Del(key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
	return nil
}
