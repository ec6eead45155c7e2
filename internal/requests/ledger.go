package requests

import (
	"emsbot/internal/cache"
	"encoding/json"
	"fmt"
	"strings"
)

// CreateRequestCacheKey builds the ledger key for a request ID
func CreateRequestCacheKey(requestIdentifiers ...string) string {
	cacheKeys := []string{requestCachePrefix}
	cacheKeys = append(cacheKeys, requestIdentifiers...)
	return strings.Join(cacheKeys, ":")
}

// StripCacheKeyPrefix recovers the request ID from a ledger key
func StripCacheKeyPrefix(cacheKey string) string {
	requestIdentifier := strings.Split(cacheKey, ":")
	if len(requestIdentifier) < 2 {
		return cacheKey
	}
	return strings.Join(requestIdentifier[1:], ":")
}

// saveRecord writes a record snapshot through to the ledger; records
// never expire since a pending request stays decidable indefinitely
func saveRecord(snapshot Record) error {
	cacheKey := CreateRequestCacheKey(snapshot.Id)
	cacheData, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal request[%s]: %s", snapshot.Id, err)
	}
	if err := cache.Get().Set(cacheKey, string(cacheData), 0); err != nil {
		return fmt.Errorf("failed to set cache for request[%s]: %s", snapshot.Id, err)
	}
	return nil
}

// LoadRecord reads a record snapshot back from the ledger
func LoadRecord(requestId string) (*Record, error) {
	cacheKey := CreateRequestCacheKey(requestId)
	value, err := cache.Get().Get(cacheKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get request[%s]: %s", cacheKey, err)
	}
	var record Record
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request[%s]: %s", cacheKey, err)
	}
	return &record, nil
}

// ListRecordIds returns the IDs of every request in the ledger
func ListRecordIds() ([]string, error) {
	keys, err := cache.Get().Scan(CreateRequestCacheKey(""))
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %s", err)
	}
	requestIds := make([]string, 0, len(keys))
	for _, key := range keys {
		requestIds = append(requestIds, StripCacheKeyPrefix(key))
	}
	return requestIds, nil
}
