package cache

import "time"

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	EntriesFreed int
	ExpiredFreed int
}

// Info represents cache information.
type Info struct {
	Enabled     bool
	TTL         time.Duration
	Entries     int
	Expired     int
	Hits        int
	Misses      int
	LastCleaned time.Time
}
