package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mealsync/internal/api"
	"mealsync/internal/cache"
	"mealsync/internal/mealplan"
)

// --- Fake auth provider ---

type fakeAuth struct {
	loading bool
	authed  bool
	userID  string
	token   string
}

func (f *fakeAuth) Loading() bool       { return f.loading }
func (f *fakeAuth) Authenticated() bool { return f.authed }
func (f *fakeAuth) UserID() string      { return f.userID }
func (f *fakeAuth) Token() string       { return f.token }

// --- Fake backend ---

type fakeBackend struct {
	plans     []mealplan.SavedPlan
	nextID    int
	listCalls int

	listErr   error
	createErr error
	updateErr error
	deleteErr error
	clearErr  error
}

func (f *fakeBackend) ListPlans(_ context.Context) ([]mealplan.SavedPlan, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]mealplan.SavedPlan, len(f.plans))
	copy(out, f.plans)
	return out, nil
}

func (f *fakeBackend) CreatePlan(_ context.Context, plan mealplan.SavedPlan) (mealplan.SavedPlan, error) {
	if f.createErr != nil {
		return mealplan.SavedPlan{}, f.createErr
	}
	f.nextID++
	plan.ID = fmt.Sprintf("plan-%d", f.nextID)
	f.plans = append([]mealplan.SavedPlan{plan}, f.plans...)
	return plan, nil
}

func (f *fakeBackend) UpdatePlan(_ context.Context, id string, entries []mealplan.Entry, updatedAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.plans {
		if f.plans[i].ID == id {
			f.plans[i].MealPlan = entries
			f.plans[i].UpdatedAt = updatedAt
		}
	}
	return nil
}

func (f *fakeBackend) DeletePlan(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.plans[:0]
	for _, p := range f.plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.plans = kept
	return nil
}

func (f *fakeBackend) ClearPlans(_ context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.plans = nil
	return nil
}

// gatedBackend blocks every ListPlans call until the test resolves it,
// so overlapping loads can be settled in a chosen order.
type gatedBackend struct {
	mu      sync.Mutex
	pending []chan listReply
	started chan struct{}
}

type listReply struct {
	plans []mealplan.SavedPlan
	err   error
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{started: make(chan struct{}, 8)}
}

func (b *gatedBackend) ListPlans(_ context.Context) ([]mealplan.SavedPlan, error) {
	reply := make(chan listReply)
	b.mu.Lock()
	b.pending = append(b.pending, reply)
	b.mu.Unlock()
	b.started <- struct{}{}
	r := <-reply
	return r.plans, r.err
}

func (b *gatedBackend) resolve(call int, plans []mealplan.SavedPlan, err error) {
	b.mu.Lock()
	reply := b.pending[call]
	b.mu.Unlock()
	reply <- listReply{plans: plans, err: err}
}

func (b *gatedBackend) CreatePlan(context.Context, mealplan.SavedPlan) (mealplan.SavedPlan, error) {
	return mealplan.SavedPlan{}, nil
}
func (b *gatedBackend) UpdatePlan(context.Context, string, []mealplan.Entry, time.Time) error {
	return nil
}
func (b *gatedBackend) DeletePlan(context.Context, string) error { return nil }
func (b *gatedBackend) ClearPlans(context.Context) error         { return nil }

// --- Fake storage ---

type memStorage struct {
	values map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{values: make(map[string][]byte)}
}

func (s *memStorage) Get(key string) ([]byte, error) {
	value, ok := s.values[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return value, nil
}

func (s *memStorage) Set(key string, value []byte) error {
	s.values[key] = value
	return nil
}

func (s *memStorage) Remove(key string) error {
	delete(s.values, key)
	return nil
}

type brokenStorage struct{}

func (brokenStorage) Get(string) ([]byte, error) { return nil, errors.New("storage disabled") }
func (brokenStorage) Set(string, []byte) error   { return errors.New("storage disabled") }
func (brokenStorage) Remove(string) error        { return errors.New("storage disabled") }

// --- Helpers ---

func mondayEntries() []mealplan.Entry {
	return []mealplan.Entry{
		{Day: "Monday", Breakfast: "Oatmeal", Lunch: "Salad", Dinner: "Soup", Snack: "Apple"},
	}
}

func newTestStore(backend *fakeBackend, storage cache.Storage) (*Store, *fakeAuth) {
	provider := &fakeAuth{authed: true, userID: "user-1", token: "tok"}
	s := New(backend, cache.NewPlanCache(storage), provider)
	return s, provider
}

func seededBackend(n int) *fakeBackend {
	backend := &fakeBackend{}
	for i := n; i >= 1; i-- {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, (i-1)*7)
		window := mealplan.GenerateWeekDates(start)
		backend.nextID++
		backend.plans = append([]mealplan.SavedPlan{{
			ID:        fmt.Sprintf("plan-%d", backend.nextID),
			Name:      window.Name,
			StartDate: window.StartDate,
			EndDate:   window.EndDate,
			MealPlan:  mondayEntries(),
			CreatedAt: start,
			UpdatedAt: start,
		}}, backend.plans...)
	}
	return backend
}

func cachedEnvelope(t *testing.T, storage *memStorage, userID string) cache.Envelope {
	t.Helper()
	data, ok := storage.values[cache.Key(userID)]
	if !ok {
		t.Fatal("Expected a cache envelope to be written")
	}
	var env cache.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("Failed to decode cache envelope: %v", err)
	}
	return env
}

// --- Tests ---

func TestAuthActivationContract(t *testing.T) {
	ctx := context.Background()

	t.Run("AuthLoadingNeitherFetchesNorClears", func(t *testing.T) {
		backend := seededBackend(1)
		storage := newMemStorage()
		s, provider := newTestStore(backend, storage)
		provider.loading = true

		// Pre-existing cached data must survive the unresolved phase.
		cache.NewPlanCache(storage).Write("user-1", backend.plans)

		if err := s.HandleAuthChange(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if backend.listCalls != 0 {
			t.Errorf("Expected no fetch while auth is loading, got %d calls", backend.listCalls)
		}
		if _, ok := storage.values[cache.Key("user-1")]; !ok {
			t.Error("Expected cached data to survive while auth is loading")
		}
	})

	t.Run("UnauthenticatedClearsStateAndCache", func(t *testing.T) {
		backend := seededBackend(2)
		storage := newMemStorage()
		s, provider := newTestStore(backend, storage)

		if err := s.Load(ctx); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(s.Plans()) != 2 {
			t.Fatalf("Expected 2 plans loaded, got %d", len(s.Plans()))
		}

		provider.authed = false
		if err := s.HandleAuthChange(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(s.Plans()) != 0 || s.Current() != nil {
			t.Error("Expected in-memory state to be cleared on logout")
		}
		if _, ok := storage.values[cache.Key("user-1")]; ok {
			t.Error("Expected the user's cache envelope to be purged on logout")
		}
	})

	t.Run("LogoutPurgesLastLoadedUser", func(t *testing.T) {
		backend := seededBackend(1)
		storage := newMemStorage()
		s, provider := newTestStore(backend, storage)

		if err := s.Load(ctx); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if _, ok := storage.values[cache.Key("user-1")]; !ok {
			t.Fatal("Expected a cache envelope after load")
		}

		// The provider forgets the uid before the logout is observed.
		provider.authed = false
		provider.userID = ""
		provider.token = ""
		if err := s.HandleAuthChange(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if _, ok := storage.values[cache.Key("user-1")]; ok {
			t.Error("Expected the previous user's cache envelope to be purged")
		}
	})

	t.Run("AuthenticatedTriggersLoad", func(t *testing.T) {
		backend := seededBackend(1)
		s, _ := newTestStore(backend, newMemStorage())

		if err := s.HandleAuthChange(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if backend.listCalls != 1 {
			t.Errorf("Expected one fetch, got %d", backend.listCalls)
		}
		if !s.Initialized() || s.Loading() {
			t.Error("Expected the store to be initialized and settled")
		}
	})
}

func TestSaveHappyPath(t *testing.T) {
	backend := &fakeBackend{}
	storage := newMemStorage()
	s, _ := newTestStore(backend, storage)

	plan, err := s.Save(context.Background(), mondayEntries(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), SaveOptions{})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if plan.StartDate != "2024-01-01" || plan.EndDate != "2024-01-07" {
		t.Errorf("Unexpected week window: %s to %s", plan.StartDate, plan.EndDate)
	}
	if plan.Name != "Jan 1 - Jan 7" {
		t.Errorf("Expected name 'Jan 1 - Jan 7', got '%s'", plan.Name)
	}
	if plan.ID == "" {
		t.Error("Expected a server-assigned id")
	}

	current := s.Current()
	if current == nil || current.ID != plan.ID {
		t.Error("Expected the saved plan to become the current plan")
	}

	env := cachedEnvelope(t, storage, "user-1")
	if len(env.Plans) != 1 || env.Plans[0].ID != plan.ID {
		t.Errorf("Expected the saved plan in the cache envelope, got %+v", env.Plans)
	}
}

func TestSaveDuplicateWeekConflict(t *testing.T) {
	message := `duplicate key value violates unique constraint "unique_user_week"`
	backend := seededBackend(2)
	s, _ := newTestStore(backend, newMemStorage())
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before := s.Plans()

	backend.createErr = &api.Error{Code: api.CodeDuplicateWeek, Message: message, HTTPStatus: 409}
	_, err := s.Save(ctx, mondayEntries(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), SaveOptions{})
	if err == nil {
		t.Fatal("Expected an error, got nil")
	}
	if err.Error() != message {
		t.Errorf("Expected the server message verbatim, got '%s'", err.Error())
	}
	if !api.IsDuplicateWeek(err) {
		t.Error("Expected the duplicate-week classification to survive propagation")
	}
	if s.Err() == nil {
		t.Error("Expected the error to be recorded in store state")
	}

	after := s.Plans()
	if len(after) != len(before) {
		t.Fatalf("Expected savedPlans unchanged, had %d now %d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("Plan %d changed: %s -> %s", i, before[i].ID, after[i].ID)
		}
	}
}

func TestSaveRejectsInvalidWeekday(t *testing.T) {
	backend := &fakeBackend{}
	s, _ := newTestStore(backend, newMemStorage())

	_, err := s.Save(context.Background(),
		[]mealplan.Entry{{Day: "Someday", Breakfast: "x", Lunch: "y", Dinner: "z"}},
		time.Now(), SaveOptions{})
	if err == nil {
		t.Fatal("Expected a validation error, got nil")
	}
	if backend.nextID != 0 {
		t.Error("Expected no request for an invalid entry list")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	backend := &fakeBackend{}
	storage := newMemStorage()
	s, _ := newTestStore(backend, storage)
	ctx := context.Background()

	entries := mondayEntries()
	saved, err := s.Save(ctx, entries, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), SaveOptions{})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Bypass the cache so the reload hits the backend.
	delete(storage.values, cache.Key("user-1"))
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	plans := s.Plans()
	if len(plans) != 1 {
		t.Fatalf("Expected 1 plan after reload, got %d", len(plans))
	}
	got := plans[0]
	if got.ID != saved.ID {
		t.Errorf("Expected a stable id across reads, got %s vs %s", got.ID, saved.ID)
	}
	if got.StartDate != "2024-01-01" || got.EndDate != "2024-01-07" {
		t.Errorf("Week window did not round-trip: %s to %s", got.StartDate, got.EndDate)
	}
	if len(got.MealPlan) != 1 || got.MealPlan[0].Breakfast != entries[0].Breakfast {
		t.Errorf("Entries did not round-trip: %+v", got.MealPlan)
	}
}

func TestDeleteReresolvesCurrent(t *testing.T) {
	backend := seededBackend(3)
	s, _ := newTestStore(backend, newMemStorage())
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	current := s.Current()
	if current == nil {
		t.Fatal("Expected a current plan after load")
	}

	// Deleting the current plan must fall back to the new first element.
	if err := s.Delete(ctx, current.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	next := s.Current()
	if next == nil {
		t.Fatal("Expected a fallback current plan")
	}
	if next.ID == current.ID {
		t.Error("Current plan dangles on the deleted id")
	}
	if next.ID != s.Plans()[0].ID {
		t.Error("Expected the current plan to be the new first element")
	}

	// Emptying the collection must null the reference.
	for _, p := range s.Plans() {
		if err := s.Delete(ctx, p.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}
	if s.Current() != nil {
		t.Error("Expected no current plan for an empty collection")
	}
}

func TestDuplicateKeepsSicknessFlags(t *testing.T) {
	backend := seededBackend(1)
	backend.plans[0].HasSickness = true
	backend.plans[0].SicknessType = "diabetes"
	s, _ := newTestStore(backend, newMemStorage())
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Flags must come from the stored plan even though the live
	// settings (SaveOptions defaults) would say otherwise.
	copyPlan, err := s.Duplicate(ctx, backend.plans[0].ID, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if !copyPlan.HasSickness || copyPlan.SicknessType != "diabetes" {
		t.Errorf("Sickness flags not carried forward: %+v", copyPlan)
	}
	if copyPlan.StartDate != "2024-06-03" || copyPlan.EndDate != "2024-06-09" {
		t.Errorf("Unexpected duplicated window: %s to %s", copyPlan.StartDate, copyPlan.EndDate)
	}

	t.Run("UnknownSource", func(t *testing.T) {
		if _, err := s.Duplicate(ctx, "missing", time.Now()); !errors.Is(err, ErrPlanNotFound) {
			t.Errorf("Expected ErrPlanNotFound, got %v", err)
		}
	})
}

func TestOperationsSoftFailOnBrokenStorage(t *testing.T) {
	backend := seededBackend(2)
	s, _ := newTestStore(backend, brokenStorage{})
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load must not surface storage failures, got %v", err)
	}
	saved, err := s.Save(ctx, mondayEntries(), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), SaveOptions{})
	if err != nil {
		t.Fatalf("Save must not surface storage failures, got %v", err)
	}
	if err := s.Update(ctx, saved.ID, mondayEntries()); err != nil {
		t.Fatalf("Update must not surface storage failures, got %v", err)
	}
	if _, err := s.Duplicate(ctx, saved.ID, time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Duplicate must not surface storage failures, got %v", err)
	}
	if err := s.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete must not surface storage failures, got %v", err)
	}
	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll must not surface storage failures, got %v", err)
	}
	if s.Err() != nil {
		t.Errorf("Expected no recorded error from storage failures, got %v", s.Err())
	}
}

func TestFilteredLoadCachesSuperset(t *testing.T) {
	backend := seededBackend(3)
	backend.plans[1].HasSickness = true
	backend.plans[1].SicknessType = "hypertension"
	storage := newMemStorage()
	s, _ := newTestStore(backend, storage)

	s.SetFilter(SicknessFilter(true))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	plans := s.Plans()
	if len(plans) != 1 {
		t.Fatalf("Expected 1 filtered plan, got %d", len(plans))
	}
	if !plans[0].HasSickness {
		t.Error("Filter let through a non-matching plan")
	}

	env := cachedEnvelope(t, storage, "user-1")
	if len(env.Plans) != 3 {
		t.Errorf("Expected the unfiltered superset (3 plans) in the cache, got %d", len(env.Plans))
	}

	current := s.Current()
	if current == nil || !current.HasSickness {
		t.Error("Expected the current plan to be the first filtered element")
	}
}

func TestOverlappingLoadsDiscardStaleResponse(t *testing.T) {
	backend := newGatedBackend()
	storage := newMemStorage()
	provider := &fakeAuth{authed: true, userID: "user-1", token: "tok"}
	s := New(backend, cache.NewPlanCache(storage), provider)
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() { errs <- s.Load(ctx) }()
	<-backend.started
	go func() { errs <- s.Load(ctx) }()
	<-backend.started

	fresh := seededBackend(3).plans
	stale := seededBackend(1).plans

	// The newer request settles first.
	backend.resolve(1, fresh, nil)
	if err := <-errs; err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Plans()) != 3 {
		t.Fatalf("Expected 3 plans from the fresh response, got %d", len(s.Plans()))
	}

	// The older response arrives late and must be discarded.
	backend.resolve(0, stale, nil)
	if err := <-errs; err != nil {
		t.Fatalf("Expected the stale load to return silently, got %v", err)
	}

	if len(s.Plans()) != 3 {
		t.Errorf("Stale response clobbered state: %d plans", len(s.Plans()))
	}
	if s.Loading() {
		t.Error("Expected loading to settle")
	}
	if !s.Initialized() {
		t.Error("Expected the store to be initialized")
	}
	env := cachedEnvelope(t, storage, "user-1")
	if len(env.Plans) != 3 {
		t.Errorf("Expected the cache to keep the fresh collection, got %d plans", len(env.Plans))
	}
}

func TestSaveFilteredOutDoesNotBecomeCurrent(t *testing.T) {
	backend := seededBackend(1)
	backend.plans[0].HasSickness = true
	backend.plans[0].SicknessType = "diabetes"
	s, _ := newTestStore(backend, newMemStorage())
	ctx := context.Background()

	s.SetFilter(SicknessFilter(true))
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	saved, err := s.Save(ctx, mondayEntries(), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), SaveOptions{})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	for _, p := range s.Plans() {
		if p.ID == saved.ID {
			t.Error("Expected the non-matching plan to stay hidden from the view")
		}
	}
	current := s.Current()
	if current == nil {
		t.Fatal("Expected a current plan from the displayed collection")
	}
	if current.ID == saved.ID {
		t.Error("Expected current to remain a member of the displayed collection")
	}
	if !current.HasSickness {
		t.Errorf("Unexpected current plan: %+v", current)
	}
}

func TestLoadFailurePreservesDisplayedState(t *testing.T) {
	backend := seededBackend(2)
	s, _ := newTestStore(backend, newMemStorage())
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	backend.listErr = &api.Error{Code: api.CodeTransport, Message: "HTTP error! status: 502", HTTPStatus: 502}
	if err := s.Load(ctx); err == nil {
		t.Fatal("Expected the fetch error to be returned")
	}

	if len(s.Plans()) != 2 {
		t.Error("Expected displayed plans to survive a transient failure")
	}
	if s.Loading() {
		t.Error("Expected loading to settle after a failure")
	}
	if !s.Initialized() {
		t.Error("Expected initialized after a failure")
	}
	if s.Err() == nil || s.Err().Error() != "HTTP error! status: 502" {
		t.Errorf("Expected the recorded error message, got %v", s.Err())
	}
}

func TestLoadHydratesFromCacheBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{listErr: errors.New("backend down")}
	storage := newMemStorage()
	s, _ := newTestStore(backend, storage)

	cache.NewPlanCache(storage).Write("user-1", seededBackend(2).plans)

	if err := s.Load(context.Background()); err == nil {
		t.Fatal("Expected the fetch error to be returned")
	}
	if len(s.Plans()) != 2 {
		t.Errorf("Expected cached plans to be displayed despite the failure, got %d", len(s.Plans()))
	}
}

func TestUpdatePatchesCollectionAndCurrent(t *testing.T) {
	backend := seededBackend(2)
	storage := newMemStorage()
	s, _ := newTestStore(backend, storage)
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	current := s.Current()
	before := current.UpdatedAt

	replacement := []mealplan.Entry{
		{Day: "Tuesday", Breakfast: "Toast", Lunch: "Bowl", Dinner: "Curry"},
	}
	if err := s.Update(ctx, current.ID, replacement); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	patched := s.Current()
	if patched.MealPlan[0].Day != "Tuesday" {
		t.Error("Expected the current plan reference to be patched")
	}
	if !patched.UpdatedAt.After(before) {
		t.Error("Expected updatedAt to move forward")
	}

	env := cachedEnvelope(t, storage, "user-1")
	found := false
	for _, p := range env.Plans {
		if p.ID == current.ID && len(p.MealPlan) == 1 && p.MealPlan[0].Day == "Tuesday" {
			found = true
		}
	}
	if !found {
		t.Error("Expected the cache to hold the patched collection")
	}
}

func TestClearAllEmptiesStateAndPurgesCache(t *testing.T) {
	backend := seededBackend(2)
	storage := newMemStorage()
	s, _ := newTestStore(backend, storage)
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	if len(s.Plans()) != 0 || s.Current() != nil {
		t.Error("Expected the collection to be emptied")
	}
	if _, ok := storage.values[cache.Key("user-1")]; ok {
		t.Error("Expected the cache envelope to be purged alongside the state")
	}
}

func TestSelect(t *testing.T) {
	backend := seededBackend(3)
	s, _ := newTestStore(backend, newMemStorage())

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	target := s.Plans()[2]

	if err := s.Select(target.ID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if current := s.Current(); current == nil || current.ID != target.ID {
		t.Error("Expected the selected plan to become current")
	}

	t.Run("UnknownID", func(t *testing.T) {
		before := s.Current()
		if err := s.Select("missing"); !errors.Is(err, ErrPlanNotFound) {
			t.Errorf("Expected ErrPlanNotFound, got %v", err)
		}
		if after := s.Current(); after == nil || after.ID != before.ID {
			t.Error("Expected state unchanged on a failed select")
		}
	})
}
