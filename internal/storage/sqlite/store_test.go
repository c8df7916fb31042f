package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coachbyte.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	s, err := Open(context.Background(), path, 5*time.Second)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

// TestEnsureDayIdempotent verifies one row per date and the created flag.
func TestEnsureDayIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, created, err := s.EnsureDay(ctx, "2024-03-15")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first EnsureDay should create the day")
	}
	id2, created, err := s.EnsureDay(ctx, "2024-03-15")
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second EnsureDay should not create")
	}
	if id1 != id2 {
		t.Errorf("ids differ: %s vs %s", id1, id2)
	}

	days, err := s.ListDays(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 {
		t.Errorf("days = %d, want 1", len(days))
	}
}

// TestEnsureDayConcurrent verifies concurrent first touches share one day.
func TestEnsureDayConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], _, errs[i] = s.EnsureDay(ctx, "2024-03-16")
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d id = %s, want %s", i, ids[i], ids[0])
		}
	}
}

// TestApplySplitOnce verifies the template is cloned in order exactly once.
func TestApplySplitOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, ex := range []string{"Squat", "Bench", "Row"} {
		if _, err := s.AddSplitSet(ctx, models.SplitSetInput{
			Weekday: 5, Exercise: ex, Reps: 5, Load: 100, Rest: intPtr(90), Order: 3 - i,
		}); err != nil {
			t.Fatal(err)
		}
	}
	dayID, _, _ := s.EnsureDay(ctx, "2024-03-15")

	n, err := s.ApplySplitIfEmpty(ctx, dayID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("cloned = %d, want 3", n)
	}
	if n, _ := s.ApplySplitIfEmpty(ctx, dayID, 5); n != 0 {
		t.Errorf("second apply cloned %d, want 0", n)
	}

	queue, err := s.ActiveQueue(ctx, dayID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Row", "Bench", "Squat"}
	for i, p := range queue {
		if p.Exercise != want[i] {
			t.Errorf("queue[%d] = %s, want %s", i, p.Exercise, want[i])
		}
		if p.Rest != 90 {
			t.Errorf("queue[%d].rest = %d, want 90", i, p.Rest)
		}
	}

	// Emptying the day must not bring the template back.
	for _, p := range queue {
		if err := s.DeletePlannedSet(ctx, p.ID); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := s.ApplySplitIfEmpty(ctx, dayID, 5); n != 0 {
		t.Errorf("apply after emptying cloned %d, want 0", n)
	}
}

// TestApplySplitConcurrent verifies concurrent applications clone once.
func TestApplySplitConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.AddSplitSet(ctx, models.SplitSetInput{Weekday: 1, Exercise: "Press", Reps: 5, Load: 95, Order: 1})
	s.AddSplitSet(ctx, models.SplitSetInput{Weekday: 1, Exercise: "Chin", Reps: 8, Load: 0, Order: 2})
	dayID, _, _ := s.EnsureDay(ctx, "2024-03-18")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ApplySplitIfEmpty(ctx, dayID, 1)
		}()
	}
	wg.Wait()

	queue, err := s.ActiveQueue(ctx, dayID)
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 2 {
		t.Errorf("queue = %d sets, want 2", len(queue))
	}
}

// TestAddPlannedSetOrder verifies append, prepend and literal order values.
func TestAddPlannedSetOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dayID, _, _ := s.EnsureDay(ctx, "2024-03-15")

	add := func(ex string, order int) {
		t.Helper()
		if _, err := s.AddPlannedSet(ctx, dayID, models.PlannedSetInput{Exercise: ex, Reps: 5, Load: 100, Order: order}); err != nil {
			t.Fatal(err)
		}
	}
	add("A", 0)
	add("B", 0)
	add("C", -1)
	add("D", 10)

	queue, _ := s.ActiveQueue(ctx, dayID)
	wantEx := []string{"C", "A", "B", "D"}
	wantOrder := []int{0, 1, 2, 10}
	if len(queue) != len(wantEx) {
		t.Fatalf("queue = %d, want %d", len(queue), len(wantEx))
	}
	for i, p := range queue {
		if p.Exercise != wantEx[i] || p.OrderNum != wantOrder[i] {
			t.Errorf("queue[%d] = %s@%d, want %s@%d", i, p.Exercise, p.OrderNum, wantEx[i], wantOrder[i])
		}
		if p.Rest != models.DefaultRest {
			t.Errorf("queue[%d].rest = %d, want default", i, p.Rest)
		}
	}
}

// TestExerciseCaseInsensitive verifies one exercise row per name regardless
// of case, including letters outside ASCII.
func TestExerciseCaseInsensitive(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		second string
	}{
		{"ascii", "Bench Press", "bench press"},
		{"umlaut", "Übung", "übung"},
		{"surrounding space", "Deadlift", "  DEADLIFT "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			dayID, _, _ := s.EnsureDay(ctx, "2024-03-15")

			for _, ex := range []string{tt.first, tt.second} {
				if _, err := s.AddPlannedSet(ctx, dayID, models.PlannedSetInput{Exercise: ex, Reps: 5, Load: 100}); err != nil {
					t.Fatal(err)
				}
			}

			queue, _ := s.ActiveQueue(ctx, dayID)
			if len(queue) != 2 {
				t.Fatalf("queue = %d, want 2", len(queue))
			}
			for _, p := range queue {
				if p.Exercise != tt.first {
					t.Errorf("exercise = %q, want first spelling %q", p.Exercise, tt.first)
				}
			}

			if err := s.AddTrackedExercise(ctx, tt.first); err != nil {
				t.Fatal(err)
			}
			if err := s.RemoveTrackedExercise(ctx, tt.second); err != nil {
				t.Errorf("remove by %q: %v", tt.second, err)
			}
		})
	}
}

// TestCompleteSetDuplicate verifies a planned set is completed at most once.
func TestCompleteSetDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dayID, _, _ := s.EnsureDay(ctx, "2024-03-15")
	a, _ := s.AddPlannedSet(ctx, dayID, models.PlannedSetInput{Exercise: "A", Reps: 5, Load: 100, Rest: intPtr(60)})
	s.AddPlannedSet(ctx, dayID, models.PlannedSetInput{Exercise: "B", Reps: 5, Load: 100, Rest: intPtr(90)})

	in := models.CompletionInput{RepsDone: 5, LoadDone: 100, PlannedSetID: &a}
	first, err := s.CompleteSet(ctx, dayID, in, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if first.Duplicate {
		t.Error("first completion flagged duplicate")
	}
	if first.Next == nil || first.Next.Exercise != "B" || first.Next.Rest != 90 {
		t.Errorf("next = %+v, want B with rest 90", first.Next)
	}
	if first.Completed.Exercise != "A" {
		t.Errorf("exercise = %q, want planned exercise A", first.Completed.Exercise)
	}

	second, err := s.CompleteSet(ctx, dayID, in, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !second.Duplicate || second.Completed.ID != first.Completed.ID {
		t.Errorf("second = %+v, want duplicate of %d", second, first.Completed.ID)
	}

	completed, _ := s.ListCompletedSets(ctx, dayID)
	if len(completed) != 1 {
		t.Errorf("completed = %d, want 1", len(completed))
	}
}

// TestCompleteSetWrongDay verifies a planned set cannot be completed on another day.
func TestCompleteSetWrongDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day1, _, _ := s.EnsureDay(ctx, "2024-03-15")
	day2, _, _ := s.EnsureDay(ctx, "2024-03-16")
	id, _ := s.AddPlannedSet(ctx, day1, models.PlannedSetInput{Exercise: "A", Reps: 5, Load: 100})

	_, err := s.CompleteSet(ctx, day2, models.CompletionInput{RepsDone: 5, LoadDone: 100, PlannedSetID: &id}, time.Now())
	if !errors.Is(err, coach.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}

	missing := int64(999)
	_, err = s.CompleteSet(ctx, day1, models.CompletionInput{RepsDone: 5, LoadDone: 100, PlannedSetID: &missing}, time.Now())
	if !errors.Is(err, coach.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestCompletedOrdering verifies newest completions first with nulls last.
func TestCompletedOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dayID, _, _ := s.EnsureDay(ctx, "2024-03-15")
	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	r1, _ := s.CompleteSet(ctx, dayID, models.CompletionInput{Exercise: "A", RepsDone: 5, LoadDone: 1}, base)
	r2, _ := s.CompleteSet(ctx, dayID, models.CompletionInput{Exercise: "B", RepsDone: 5, LoadDone: 1}, base.Add(time.Minute))
	r3, _ := s.CompleteSet(ctx, dayID, models.CompletionInput{Exercise: "C", RepsDone: 5, LoadDone: 1}, base.Add(500*time.Millisecond))

	cleared := r1.Completed
	cleared.CompletedAt = nil
	if err := s.UpdateCompletedSet(ctx, cleared); err != nil {
		t.Fatal(err)
	}

	sets, err := s.ListCompletedSets(ctx, dayID)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{r2.Completed.ID, r3.Completed.ID, r1.Completed.ID}
	for i, c := range sets {
		if c.ID != want[i] {
			t.Errorf("sets[%d] = %d, want %d", i, c.ID, want[i])
		}
	}
	if sets[0].CompletedAt == nil || !sets[0].CompletedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("completed_at = %v, want %v", sets[0].CompletedAt, base.Add(time.Minute))
	}
}

// TestDeleteDayCascades verifies planned and completed sets go with the day.
func TestDeleteDayCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dayID, _, _ := s.EnsureDay(ctx, "2024-03-15")
	id, _ := s.AddPlannedSet(ctx, dayID, models.PlannedSetInput{Exercise: "A", Reps: 5, Load: 100})
	s.CompleteSet(ctx, dayID, models.CompletionInput{RepsDone: 5, LoadDone: 100, PlannedSetID: &id}, time.Now())

	if err := s.DeleteDay(ctx, dayID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPlannedSet(ctx, id); !errors.Is(err, coach.ErrNotFound) {
		t.Errorf("planned set err = %v, want ErrNotFound", err)
	}
	completions, _ := s.Completions(ctx)
	if len(completions) != 0 {
		t.Errorf("completions = %d, want 0", len(completions))
	}
	if err := s.DeleteDay(ctx, dayID); !errors.Is(err, coach.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

// TestTimerUpsert verifies the single timer row is replaced on write.
func TestTimerUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	end, err := s.Timer(ctx)
	if err != nil || end != nil {
		t.Fatalf("Timer() = %v, %v, want nil, nil", end, err)
	}

	first := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	second := first.Add(90 * time.Second)
	s.SetTimer(ctx, first)
	if err := s.SetTimer(ctx, second); err != nil {
		t.Fatal(err)
	}
	end, err = s.Timer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if end == nil || !end.Equal(second) {
		t.Errorf("timer = %v, want %v", end, second)
	}
}

// TestReplaceSplitDay verifies a weekday's rows are swapped while others remain.
func TestReplaceSplitDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.AddSplitSet(ctx, models.SplitSetInput{Weekday: 1, Exercise: "Old", Reps: 5, Load: 100, Order: 1})
	s.AddSplitSet(ctx, models.SplitSetInput{Weekday: 2, Exercise: "Keep", Reps: 5, Load: 100, Order: 1})

	err := s.ReplaceSplitDay(ctx, 1, []models.SplitSetInput{
		{Exercise: "New1", Reps: 3, Load: 80, Order: 1, Relative: true},
		{Exercise: "New2", Reps: 8, Load: 50, Order: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	monday := 1
	sets, _ := s.SplitSets(ctx, &monday)
	if len(sets) != 2 || sets[0].Exercise != "New1" || !sets[0].Relative {
		t.Errorf("monday = %+v, want New1 relative then New2", sets)
	}
	all, _ := s.SplitSets(ctx, nil)
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}

// TestReplaceSplit verifies several weekdays and the notes are written in one
// transaction that rolls back as a whole.
func TestReplaceSplit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.AddSplitSet(ctx, models.SplitSetInput{Weekday: 1, Exercise: "Old", Reps: 5, Load: 100, Order: 1})
	s.AddSplitSet(ctx, models.SplitSetInput{Weekday: 3, Exercise: "Keep", Reps: 5, Load: 100, Order: 1})
	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	// day_of_week is CHECKed at 0..6, so weekday 9 fails after or before monday.
	bad := map[int][]models.SplitSetInput{
		1: {{Exercise: "New", Reps: 3, Load: 80, Order: 1}},
		9: {{Exercise: "Nope", Reps: 3, Load: 80, Order: 1}},
	}
	notes := "deload"
	if err := s.ReplaceSplit(ctx, bad, &notes, at); err == nil {
		t.Fatal("expected error for out-of-range weekday")
	}
	all, _ := s.SplitSets(ctx, nil)
	if len(all) != 2 || all[0].Exercise != "Old" {
		t.Errorf("after rollback = %+v, want original template", all)
	}
	if n, _ := s.SplitNotes(ctx); n.Notes != "" {
		t.Errorf("notes after rollback = %q", n.Notes)
	}

	good := map[int][]models.SplitSetInput{
		1: {{Exercise: "New", Reps: 3, Load: 80, Order: 1}},
		5: {},
	}
	if err := s.ReplaceSplit(ctx, good, &notes, at); err != nil {
		t.Fatal(err)
	}
	all, _ = s.SplitSets(ctx, nil)
	if len(all) != 2 || all[0].Exercise != "New" || all[1].Exercise != "Keep" {
		t.Errorf("split = %+v, want New then Keep", all)
	}
	if n, _ := s.SplitNotes(ctx); n.Notes != "deload" {
		t.Errorf("notes = %q, want deload", n.Notes)
	}
}

// TestTrackedAndTargets verifies tracked exercises and PR target upserts.
func TestTrackedAndTargets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddTrackedExercise(ctx, "Bench")
	s.AddTrackedExercise(ctx, "BENCH")
	names, _ := s.TrackedExercises(ctx)
	if len(names) != 1 || names[0] != "Bench" {
		t.Errorf("tracked = %v, want [Bench]", names)
	}
	if err := s.RemoveTrackedExercise(ctx, "squat"); !errors.Is(err, coach.ErrNotFound) {
		t.Errorf("remove untracked err = %v, want ErrNotFound", err)
	}

	s.UpsertPRTarget(ctx, models.PRTarget{Exercise: "Bench", Reps: 1, MaxLoad: 225})
	s.UpsertPRTarget(ctx, models.PRTarget{Exercise: "bench", Reps: 1, MaxLoad: 235})
	targets, _ := s.PRTargets(ctx)
	if len(targets) != 1 || targets[0].MaxLoad != 235 {
		t.Errorf("targets = %+v, want single 235", targets)
	}
	if err := s.DeletePRTarget(ctx, "Bench", 1); err != nil {
		t.Errorf("delete target: %v", err)
	}
}

// TestSplitNotes verifies notes default empty and update in place.
func TestSplitNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	notes, err := s.SplitNotes(ctx)
	if err != nil || notes.Notes != "" || notes.UpdatedAt != nil {
		t.Fatalf("SplitNotes() = %+v, %v, want empty", notes, err)
	}
	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	s.SetSplitNotes(ctx, "deload week", at)
	s.SetSplitNotes(ctx, "peak week", at.Add(time.Hour))

	notes, _ = s.SplitNotes(ctx)
	if notes.Notes != "peak week" || !notes.UpdatedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("notes = %+v, want latest write", notes)
	}
}

// TestHistory verifies planned-with-completion rows and ad-hoc rows per date.
func TestHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	old, _, _ := s.EnsureDay(ctx, "2024-03-01")
	dayID, _, _ := s.EnsureDay(ctx, "2024-03-15")
	s.AddPlannedSet(ctx, old, models.PlannedSetInput{Exercise: "Old", Reps: 5, Load: 100})
	a, _ := s.AddPlannedSet(ctx, dayID, models.PlannedSetInput{Exercise: "A", Reps: 5, Load: 100})
	s.AddPlannedSet(ctx, dayID, models.PlannedSetInput{Exercise: "B", Reps: 3, Load: 80, Relative: true})
	s.CompleteSet(ctx, dayID, models.CompletionInput{RepsDone: 4, LoadDone: 100, PlannedSetID: &a}, time.Now())
	s.CompleteSet(ctx, dayID, models.CompletionInput{Exercise: "Curl", RepsDone: 12, LoadDone: 30}, time.Now())

	rows, err := s.History(ctx, "2024-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3: %+v", len(rows), rows)
	}
	if rows[0].Exercise != "A" || rows[0].RepsDone == nil || *rows[0].RepsDone != 4 {
		t.Errorf("rows[0] = %+v, want A done 4", rows[0])
	}
	if rows[1].Exercise != "B" || rows[1].RepsDone != nil || !rows[1].Relative {
		t.Errorf("rows[1] = %+v, want B not done", rows[1])
	}
	if rows[2].Exercise != "Curl" || rows[2].Reps != nil {
		t.Errorf("rows[2] = %+v, want ad-hoc Curl", rows[2])
	}
}
