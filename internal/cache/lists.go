package cache

import (
	"context"       // Context for cache operations
	"crypto/sha256" // Identity hashing
	"encoding/hex"  // Hash encoding
	"net/url"       // Query canonicalisation
	"time"          // TTL

	"github.com/sirupsen/logrus" // Logging
)

// Entity names a cached list endpoint
type Entity string

// Cached list endpoints
const (
	Hunters        Entity = "hunter"        // /api/hunters
	Guilds         Entity = "guild"         // /api/guilds
	Skills         Entity = "skill"         // /api/skills
	Dungeons       Entity = "dungeon"       // /api/dungeons
	Raids          Entity = "raid"          // /api/raids
	Participations Entity = "participation" // /api/raid-participations
)

// dependents maps a written entity to every list that may embed its data
var dependents = map[Entity][]Entity{
	Hunters:        {Hunters, Participations, Guilds, Raids, Skills}, // Power level shows up everywhere
	Guilds:         {Guilds, Hunters},                                // Hunters embed their guild
	Dungeons:       {Dungeons, Raids},                                // Raids embed dungeon_info
	Raids:          {Raids, Participations, Hunters},                 // Participations embed raid_info
	Participations: {Participations, Raids, Hunters},                 // Team strength and raid history
	Skills:         {Skills, Hunters},                                // Power level depends on skill power
}

// Dependents returns the lists invalidated by a write to e
func Dependents(e Entity) []Entity {
	return append([]Entity(nil), dependents[e]...) // Copy of the graph entry
}

// Prefix is the key prefix shared by every page of a list
func (e Entity) Prefix() string {
	return string(e) + "_list:" // e.g. hunter_list:
}

// Pattern matches every cached page of the list
func (e Entity) Pattern() string {
	return e.Prefix() + "*" // Glob for SCAN MATCH
}

// ListCache stores rendered list pages and drops them when related rows change.
// Failures are logged and never returned to the caller.
type ListCache struct {
	store Store         // Backing store
	ttl   time.Duration // Page lifetime
}

// NewListCache builds a list cache over store
func NewListCache(store Store, ttl time.Duration) *ListCache {
	return &ListCache{store: store, ttl: ttl}
}

// Key identifies one page of a list as seen by one identity
func (l *ListCache) Key(e Entity, authorization string, query url.Values) string {
	sum := sha256.Sum256([]byte(authorization))                            // Never store the raw token
	return e.Prefix() + hex.EncodeToString(sum[:8]) + ":" + query.Encode() // Encode sorts the params
}

// Get loads a cached page into dest
func (l *ListCache) Get(ctx context.Context, key string, dest any) bool {
	found, err := l.store.Get(ctx, key, dest) // Read page
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   key,         // Page key
			"error": err.Error(), // Store error
		}).Warn("List cache read failed")
		return false // Treat as a miss
	}
	return found
}

// Set stores a rendered page
func (l *ListCache) Set(ctx context.Context, key string, page any) {
	if err := l.store.Set(ctx, key, page, l.ttl); err != nil { // Write page
		logrus.WithFields(logrus.Fields{
			"key":   key,         // Page key
			"error": err.Error(), // Store error
		}).Warn("List cache write failed")
	}
}

// Invalidate drops every list that depends on the written entities
func (l *ListCache) Invalidate(ctx context.Context, written ...Entity) {
	seen := make(map[Entity]bool) // Lists already dropped
	for _, w := range written {
		for _, e := range dependents[w] {
			if seen[e] {
				continue // Shared dependent
			}
			seen[e] = true
			n, err := l.store.DeletePattern(ctx, e.Pattern()) // Drop every page
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"pattern": e.Pattern(), // Key glob
					"error":   err.Error(), // Store error
				}).Warn("List cache invalidation failed")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"pattern": e.Pattern(), // Key glob
				"deleted": n,           // Pages removed
			}).Debug("List cache invalidated")
		}
	}
}
