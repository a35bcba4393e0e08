package cache

import "fmt"

// ErrInvalidTTL is returned when a cache is configured with a non-positive TTL.
var ErrInvalidTTL = fmt.Errorf("cache TTL must be positive")
