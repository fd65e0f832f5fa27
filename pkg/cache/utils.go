package cache

import "fmt"

// GenerateKeyWithParams creates a cache key with multiple parameters.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}

// WindowKey builds the canonical key for a cached price window.
func WindowKey(symbol, timeframe string, start, end int64) string {
	return GenerateKeyWithParams("window", symbol, timeframe, start, end)
}
