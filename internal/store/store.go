package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"mealsync/internal/api"
	"mealsync/internal/auth"
	"mealsync/internal/cache"
	"mealsync/internal/mealplan"
)

// ErrPlanNotFound is returned when an operation references a plan id
// that is not in the current collection.
var ErrPlanNotFound = errors.New("meal plan not found")

// Filter narrows the displayed plan list. The cache always keeps the
// unfiltered superset regardless of the active filter.
type Filter func(mealplan.SavedPlan) bool

// SicknessFilter keeps plans whose sickness flag matches want.
func SicknessFilter(want bool) Filter {
	return func(p mealplan.SavedPlan) bool {
		return p.HasSickness == want
	}
}

// SaveOptions carries the optional metadata recorded on a plan at
// creation time. Sickness flags are fixed here for the plan's lifetime.
type SaveOptions struct {
	HealthAssessment *mealplan.HealthAssessment
	UserInfo         *mealplan.UserInfo
	HasSickness      bool
	SicknessType     string
}

// Store owns the authoritative list of a user's saved weekly meal
// plans and the currently selected plan, synchronized with the backend
// and mirrored in a short-lived user-scoped cache.
//
// All methods are safe for concurrent use. Overlapping Load calls are
// serialized by a generation counter: a response that is no longer the
// latest issued is discarded instead of clobbering newer state.
type Store struct {
	client api.Client
	cache  *cache.PlanCache
	auth   auth.Provider
	filter Filter
	now    func() time.Time

	mu          sync.Mutex
	user        string               // owner of the data in memory and in the cache
	all         []mealplan.SavedPlan // unfiltered, newest first
	plans       []mealplan.SavedPlan // filtered view of all
	current     *mealplan.SavedPlan
	loading     bool
	initialized bool
	lastErr     error
	loadGen     uint64
}

// New creates a Store. The auth provider is injected so the store can
// be exercised in isolation; it issues no network requests until
// HandleAuthChange observes a resolved, authenticated session.
func New(client api.Client, planCache *cache.PlanCache, provider auth.Provider) *Store {
	return &Store{
		client: client,
		cache:  planCache,
		auth:   provider,
		now:    time.Now,
	}
}

// SetFilter installs the display filter applied to loaded plans. It
// does not re-fetch; the next Load or mutation re-derives the view.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.plans = s.applyFilter(s.all)
}

// HandleAuthChange re-derives the store's state from the auth
// provider. While auth is unresolved it neither fetches nor clears, so
// cached data survives a reload without flicker. Once resolved it
// either loads (authenticated) or clears state and purges the user's
// cache (not authenticated).
func (s *Store) HandleAuthChange(ctx context.Context) error {
	if s.auth.Loading() {
		return nil
	}
	if !s.auth.Authenticated() {
		s.mu.Lock()
		lastUser := s.user
		s.user = ""
		s.all = nil
		s.plans = nil
		s.current = nil
		s.loading = false
		s.initialized = false
		s.lastErr = nil
		s.mu.Unlock()
		// The provider may have forgotten the uid by the time logout is
		// observed, so the purge keys off the user whose plans were held.
		s.cache.Purge(lastUser)
		if uid := s.auth.UserID(); uid != lastUser {
			s.cache.Purge(uid)
		}
		return nil
	}
	return s.Load(ctx)
}

// Load refreshes the plan collection from the backend. It hydrates
// from the cache envelope first so a reload never shows a blank state,
// then fetches, caches the unfiltered result, and re-derives the
// filtered view and current plan. On failure the displayed state is
// preserved and the error is recorded; loading and initialized are
// settled either way.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	userID := s.auth.UserID()
	s.user = userID
	if cached, ok := s.cache.Read(userID); ok {
		s.all = cached
		s.plans = s.applyFilter(cached)
		s.current = firstOrNil(s.plans)
	}
	s.loading = true
	s.loadGen++
	gen := s.loadGen
	s.mu.Unlock()

	plans, err := s.client.ListPlans(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		// A newer Load is in flight; let it settle the state.
		return nil
	}
	s.loading = false
	s.initialized = true
	if err != nil {
		s.lastErr = err
		return err
	}

	s.cache.Write(userID, plans)
	s.all = plans
	s.plans = s.applyFilter(plans)
	s.current = firstOrNil(s.plans)
	s.lastErr = nil
	return nil
}

// Save persists a new weekly plan starting at start, prepends the
// server-confirmed record, and selects it as the current plan when the
// active filter displays it. Server error messages propagate verbatim
// inside *api.Error.
func (s *Store) Save(ctx context.Context, entries []mealplan.Entry, start time.Time, opts SaveOptions) (mealplan.SavedPlan, error) {
	if err := mealplan.ValidateEntries(entries); err != nil {
		s.recordErr(err)
		return mealplan.SavedPlan{}, err
	}

	window := mealplan.GenerateWeekDates(start)
	now := s.now()
	draft := mealplan.SavedPlan{
		Name:             window.Name,
		StartDate:        window.StartDate,
		EndDate:          window.EndDate,
		MealPlan:         entries,
		CreatedAt:        now,
		UpdatedAt:        now,
		HealthAssessment: opts.HealthAssessment,
		UserInfo:         opts.UserInfo,
		HasSickness:      opts.HasSickness,
		SicknessType:     opts.SicknessType,
	}

	confirmed, err := s.client.CreatePlan(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return mealplan.SavedPlan{}, err
	}

	s.all = append([]mealplan.SavedPlan{confirmed}, s.all...)
	s.commitLocked()
	if s.filter == nil || s.filter(confirmed) {
		selected := confirmed
		s.current = &selected
	} else {
		// The current plan is always a member of the displayed
		// collection; a plan the active filter hides cannot be it.
		s.current = firstOrNil(s.plans)
	}
	s.lastErr = nil
	return confirmed, nil
}

// Update replaces the entry list of an existing plan and refreshes its
// updated-at timestamp, patching both the collection and the current
// plan reference when it is the one being edited.
func (s *Store) Update(ctx context.Context, id string, entries []mealplan.Entry) error {
	updatedAt := s.now()
	err := s.client.UpdatePlan(ctx, id, entries, updatedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return err
	}

	for i := range s.all {
		if s.all[i].ID == id {
			s.all[i].MealPlan = entries
			s.all[i].UpdatedAt = updatedAt
		}
	}
	if s.current != nil && s.current.ID == id {
		s.current.MealPlan = entries
		s.current.UpdatedAt = updatedAt
	}
	s.commitLocked()
	s.lastErr = nil
	return nil
}

// Delete removes a plan and re-resolves the current plan to the new
// first element of the filtered collection, or nil when it is empty.
// The current plan never dangles on a deleted id.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.client.DeletePlan(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return err
	}

	kept := s.all[:0]
	for _, p := range s.all {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.all = kept
	s.commitLocked()
	s.current = firstOrNil(s.plans)
	s.lastErr = nil
	return nil
}

// Duplicate saves a copy of an existing plan into a new week. The
// entry list and the sickness flags come from the in-memory source
// plan, not from live settings: a plan's sickness classification is
// provenance, fixed at creation.
func (s *Store) Duplicate(ctx context.Context, id string, newStart time.Time) (mealplan.SavedPlan, error) {
	s.mu.Lock()
	var source *mealplan.SavedPlan
	for i := range s.all {
		if s.all[i].ID == id {
			src := s.all[i]
			source = &src
			break
		}
	}
	s.mu.Unlock()

	if source == nil {
		s.recordErr(ErrPlanNotFound)
		return mealplan.SavedPlan{}, ErrPlanNotFound
	}

	return s.Save(ctx, source.MealPlan, newStart, SaveOptions{
		HasSickness:  source.HasSickness,
		SicknessType: source.SicknessType,
	})
}

// ClearAll removes the entire collection server-side, then empties the
// in-memory state and purges the cache envelope. State and cache move
// together; a cleared account never resurrects stale plans on the next
// load.
func (s *Store) ClearAll(ctx context.Context) error {
	err := s.client.ClearPlans(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return err
	}

	s.all = nil
	s.plans = nil
	s.current = nil
	s.cache.Purge(s.auth.UserID())
	s.lastErr = nil
	return nil
}

// Select sets the current plan to the matching element of the
// displayed collection. It is purely local: no network call, and an
// unknown id leaves the state untouched.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plans {
		if s.plans[i].ID == id {
			selected := s.plans[i]
			s.current = &selected
			return nil
		}
	}
	return ErrPlanNotFound
}

// Plans returns a copy of the filtered plan collection, newest first.
func (s *Store) Plans() []mealplan.SavedPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mealplan.SavedPlan, len(s.plans))
	copy(out, s.plans)
	return out
}

// Current returns a copy of the currently selected plan, or nil.
func (s *Store) Current() *mealplan.SavedPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	current := *s.current
	return &current
}

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Initialized distinguishes "never fetched" from "fetched and got zero
// results".
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Err returns the last recorded operation error, or nil.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// commitLocked pairs every state mutation with a cache rewrite and
// re-derives the filtered view. Callers hold s.mu.
func (s *Store) commitLocked() {
	s.user = s.auth.UserID()
	s.cache.Write(s.user, s.all)
	s.plans = s.applyFilter(s.all)
}

func (s *Store) applyFilter(plans []mealplan.SavedPlan) []mealplan.SavedPlan {
	if s.filter == nil {
		out := make([]mealplan.SavedPlan, len(plans))
		copy(out, plans)
		return out
	}
	var out []mealplan.SavedPlan
	for _, p := range plans {
		if s.filter(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) recordErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

func firstOrNil(plans []mealplan.SavedPlan) *mealplan.SavedPlan {
	if len(plans) == 0 {
		return nil
	}
	first := plans[0]
	return &first
}
