package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionSnapshotKey returns the cache key holding the autosaved snapshot
// (answers + bookmarks) of an in-progress quiz session.
func (r *CacheKeyStruct) SessionSnapshotKey(sessionID string) string {
	return fmt.Sprintf("quiz:session:%s:snapshot", sessionID)
}

var CacheKey = NewCacheKeyStruct()
