package cache

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"mealsync/internal/mealplan"
)

// DefaultTTL is the freshness window for a cached plan list.
const DefaultTTL = 5 * time.Minute

const (
	keyPrefix    = "meal_plans_"
	anonymousKey = keyPrefix + "anon"
)

// Envelope is the unit written to durable storage: the complete,
// unfiltered plan collection plus the write timestamp.
type Envelope struct {
	Plans     []mealplan.SavedPlan `json:"plans"`
	WrittenAt time.Time            `json:"written_at"`
}

// PlanCache is a TTL-bound, user-scoped read-through cache for saved
// meal plans. All storage failures are logged and swallowed: a broken
// store degrades to a permanent miss, never to a user-facing error.
type PlanCache struct {
	storage Storage
	ttl     time.Duration
	now     func() time.Time
}

// NewPlanCache creates a PlanCache with the default 5-minute TTL.
func NewPlanCache(storage Storage) *PlanCache {
	return &PlanCache{
		storage: storage,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
}

// Key returns the storage key for a user. An empty user id maps to the
// anonymous key so pre-auth reads never collide with a real account.
func Key(userID string) string {
	if userID == "" {
		return anonymousKey
	}
	return keyPrefix + userID
}

// Read returns the cached plan list for userID, or ok=false on any
// miss. An entry older than the TTL is treated as absent and actively
// removed from storage so stale envelopes do not accumulate.
func (c *PlanCache) Read(userID string) ([]mealplan.SavedPlan, bool) {
	key := Key(userID)
	data, err := c.storage.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("Warning: cache read for %s failed: %v", key, err)
		}
		return nil, false
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("Warning: cache entry %s is corrupt, dropping: %v", key, err)
		c.remove(key)
		return nil, false
	}

	if c.now().Sub(env.WrittenAt) > c.ttl {
		c.remove(key)
		return nil, false
	}

	return env.Plans, true
}

// Write stores the complete plan collection for userID. Callers must
// pass the unfiltered set: the cache is the superset source of truth
// for every filter a consumer may apply later.
func (c *PlanCache) Write(userID string, plans []mealplan.SavedPlan) {
	env := Envelope{Plans: plans, WrittenAt: c.now()}
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("Warning: failed to marshal cache envelope: %v", err)
		return
	}
	key := Key(userID)
	if err := c.storage.Set(key, data); err != nil {
		log.Printf("Warning: cache write for %s failed: %v", key, err)
	}
}

// Purge removes the cached envelope for userID.
func (c *PlanCache) Purge(userID string) {
	c.remove(Key(userID))
}

func (c *PlanCache) remove(key string) {
	if err := c.storage.Remove(key); err != nil {
		log.Printf("Warning: cache removal for %s failed: %v", key, err)
	}
}
