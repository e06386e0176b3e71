package tasks

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/balkashynov/tend/internal/db"
	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/notify"
)

// trayRecorder is a Notifier that remembers which tasks are showing
type trayRecorder struct {
	mu      sync.Mutex
	showing map[uint]bool
	shows   int
	cancels int
	err     error
}

func newTrayRecorder() *trayRecorder {
	return &trayRecorder{showing: make(map[uint]bool)}
}

func (r *trayRecorder) ShowTaskNotification(task models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows++
	if r.err != nil {
		return r.err
	}
	r.showing[task.ID] = true
	return nil
}

func (r *trayRecorder) CancelTaskNotification(taskID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels++
	if r.err != nil {
		return r.err
	}
	delete(r.showing, taskID)
	return nil
}

func (r *trayRecorder) isShowing(id uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.showing[id]
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestService(t *testing.T) (*Service, *db.Store, *trayRecorder) {
	t.Helper()
	store, err := db.Open(db.Options{
		Path:   filepath.Join(t.TempDir(), "tend.db"),
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("db.Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tray := newTrayRecorder()
	svc := NewService(store, notify.NewCoordinator(tray, quietLogger()), quietLogger())
	return svc, store, tray
}

func TestSaveTaskWithChecklistCreates(t *testing.T) {
	svc, _, tray := newTestService(t)
	ctx := context.Background()

	task := &models.Task{Title: "Pack for trip", PinNotification: true}
	saved, err := svc.SaveTaskWithChecklist(ctx, task, []models.ChecklistItem{
		{Text: "passport"},
		{Text: "charger"},
	})
	if err != nil {
		t.Fatalf("SaveTaskWithChecklist failed: %v", err)
	}

	if saved.ID == 0 || len(saved.Checklist) != 2 {
		t.Fatalf("unexpected saved task: %+v", saved)
	}
	for _, item := range saved.Checklist {
		if item.ID == 0 || item.TaskID != saved.ID {
			t.Errorf("item not persisted under task: %+v", item)
		}
	}
	if !tray.isShowing(saved.ID) {
		t.Error("pinned open task should show a notification")
	}
	if saved.Completed {
		t.Error("task with open items must not be completed")
	}
}

func TestSaveTaskWithChecklistScenario(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "scenario"},
		[]models.ChecklistItem{{Text: "a"}, {Text: "b"}})
	if err != nil {
		t.Fatal(err)
	}
	a, b := saved.Checklist[0], saved.Checklist[1]

	edited := *saved
	edited.Checklist = nil
	a.Completed = true
	result, err := svc.SaveTaskWithChecklist(ctx, &edited, []models.ChecklistItem{a, {Text: "c"}})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Checklist) != 2 {
		t.Fatalf("expected 2 items, got %+v", result.Checklist)
	}
	if result.Checklist[0].ID != a.ID || !result.Checklist[0].Completed {
		t.Errorf("item a not updated: %+v", result.Checklist[0])
	}
	c := result.Checklist[1]
	if c.Text != "c" || c.ID == 0 || c.ID == b.ID || c.TaskID != saved.ID {
		t.Errorf("item c not inserted: %+v", c)
	}
	for _, item := range result.Checklist {
		if item.ID == b.ID {
			t.Errorf("item b should be deleted")
		}
	}
	if result.Completed {
		t.Error("c is still open, task must not auto-complete")
	}
}

func TestCheckingLastItemCompletesTask(t *testing.T) {
	svc, _, tray := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "almost", PinNotification: true},
		[]models.ChecklistItem{{Text: "one", Completed: true}, {Text: "two", Completed: true}, {Text: "three"}})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Completed {
		t.Fatal("task completed too early")
	}
	if !tray.isShowing(saved.ID) {
		t.Fatal("notification should be showing before completion")
	}

	if _, err := svc.SetChecklistItemCompleted(ctx, saved.Checklist[2].ID, true); err != nil {
		t.Fatal(err)
	}

	got, _ := svc.Task(ctx, saved.ID)
	if !got.Completed || got.CompletedAt == nil {
		t.Errorf("task should be auto-completed: %+v", got)
	}
	if tray.isShowing(saved.ID) {
		t.Error("auto-completion should cancel the notification")
	}
}

func TestSubmittingFullyCheckedChecklistCompletesTask(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "done on save"},
		[]models.ChecklistItem{{Text: "x", Completed: true}, {Text: "y", Completed: true}})
	if err != nil {
		t.Fatal(err)
	}
	if !saved.Completed {
		t.Error("fully checked checklist should complete the task")
	}
}

func TestReopeningWithCheckedItemsStaysOpen(t *testing.T) {
	svc, _, tray := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "reopen", PinNotification: true},
		[]models.ChecklistItem{{Text: "a", Completed: true}, {Text: "b", Completed: true}})
	if err != nil {
		t.Fatal(err)
	}
	if !saved.Completed {
		t.Fatal("fully checked checklist should complete the task")
	}

	// Reopen and drop b; a stays checked but nothing is newly checked
	reopen := *saved
	reopen.Completed = false
	reopen.CompletedAt = nil
	reopen.Workspace = nil
	reopen.Checklist = nil
	got, err := svc.SaveTaskWithChecklist(ctx, &reopen, []models.ChecklistItem{saved.Checklist[0]})
	if err != nil {
		t.Fatal(err)
	}
	if got.Completed {
		t.Error("reopened task was completed again without a newly checked item")
	}
	if len(got.Checklist) != 1 || !got.Checklist[0].Completed {
		t.Errorf("checklist = %+v, want only the checked a", got.Checklist)
	}
	if !tray.isShowing(got.ID) {
		t.Error("pinned open task should show its notification")
	}
}

func TestSaveRejectsItemOfAnotherTask(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	other, _ := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "other"}, []models.ChecklistItem{{Text: "theirs"}})
	mine, _ := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "mine"}, []models.ChecklistItem{{Text: "ours"}})

	task := *mine
	task.Workspace = nil
	task.Checklist = nil
	_, err := svc.SaveTaskWithChecklist(ctx, &task, []models.ChecklistItem{mine.Checklist[0], other.Checklist[0]})
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("error = %v, want db.ErrNotFound", err)
	}

	got, _ := svc.Task(ctx, mine.ID)
	if len(got.Checklist) != 1 || got.Checklist[0].Text != "ours" {
		t.Errorf("checklist changed: %+v", got.Checklist)
	}
}

func TestEmptyChecklistNeverCompletes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "empty"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		completed, err := svc.evaluateAutoCompletion(ctx, saved.ID)
		if err != nil {
			t.Fatal(err)
		}
		if completed {
			t.Fatal("empty checklist must not complete the task")
		}
	}

	got, _ := svc.Task(ctx, saved.ID)
	if got.Completed {
		t.Error("task was completed")
	}
}

// Unchecking an item does not reopen a task that was auto-completed. This is
// the current one-way behaviour, kept on purpose.
func TestUncheckingDoesNotReopenTask(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	saved, _ := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "ratchet"},
		[]models.ChecklistItem{{Text: "only"}})
	item := saved.Checklist[0]

	if _, err := svc.SetChecklistItemCompleted(ctx, item.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetChecklistItemCompleted(ctx, item.ID, false); err != nil {
		t.Fatal(err)
	}

	got, _ := svc.Task(ctx, saved.ID)
	if !got.Completed {
		t.Error("known asymmetry changed: unchecking reopened the task")
	}
	if got.Checklist[0].Completed {
		t.Error("item should be unchecked")
	}
}

func TestNotificationFollowsPinAndCompletion(t *testing.T) {
	svc, _, tray := newTestService(t)
	ctx := context.Background()

	task, err := svc.UpdateTask(ctx, &models.Task{Title: "pin me", PinNotification: true})
	if err != nil {
		t.Fatal(err)
	}
	if !tray.isShowing(task.ID) {
		t.Fatal("pin=true, completed=false should show")
	}

	if _, err := svc.SetTaskCompleted(ctx, task.ID, true); err != nil {
		t.Fatal(err)
	}
	if tray.isShowing(task.ID) {
		t.Error("completing should cancel")
	}

	if _, err := svc.SetTaskCompleted(ctx, task.ID, false); err != nil {
		t.Fatal(err)
	}
	if !tray.isShowing(task.ID) {
		t.Error("reopening a pinned task should show again")
	}

	if _, err := svc.SetTaskPinned(ctx, task.ID, false); err != nil {
		t.Fatal(err)
	}
	if tray.isShowing(task.ID) {
		t.Error("unpinning should cancel")
	}
}

func TestDeleteTaskCancelsNotification(t *testing.T) {
	svc, store, tray := newTestService(t)
	ctx := context.Background()

	saved, _ := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "doomed", PinNotification: true},
		[]models.ChecklistItem{{Text: "i"}})

	if err := svc.DeleteTask(ctx, saved.ID); err != nil {
		t.Fatal(err)
	}
	if tray.isShowing(saved.ID) {
		t.Error("deleted task still has a notification")
	}
	items, _ := store.ChecklistItems(ctx, saved.ID)
	if len(items) != 0 {
		t.Errorf("checklist survived deletion: %+v", items)
	}
	if err := svc.DeleteTask(ctx, saved.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestNotificationFailuresAreSwallowed(t *testing.T) {
	svc, _, tray := newTestService(t)
	ctx := context.Background()
	tray.err = notify.ErrPermissionDenied

	task, err := svc.UpdateTask(ctx, &models.Task{Title: "denied", PinNotification: true})
	if err != nil {
		t.Fatalf("permission failure leaked to caller: %v", err)
	}
	if _, err := svc.SetTaskCompleted(ctx, task.ID, true); err != nil {
		t.Fatalf("permission failure leaked to caller: %v", err)
	}
	if tray.shows == 0 || tray.cancels == 0 {
		t.Errorf("notifier not called: shows=%d cancels=%d", tray.shows, tray.cancels)
	}
}

// failingChecklist makes checklist reads fail while writes still work
type failingChecklist struct {
	*db.Store
	fail bool
}

func (f *failingChecklist) ChecklistItems(ctx context.Context, taskID uint) ([]models.ChecklistItem, error) {
	if f.fail {
		return nil, errors.New("checklist read failed")
	}
	return f.Store.ChecklistItems(ctx, taskID)
}

func TestAutoCompletionTreatsReadFailureAsNoItems(t *testing.T) {
	_, store, tray := newTestService(t)
	repo := &failingChecklist{Store: store}
	svc := NewService(repo, notify.NewCoordinator(tray, quietLogger()), quietLogger())
	ctx := context.Background()

	saved, err := svc.SaveTaskWithChecklist(ctx, &models.Task{Title: "flaky"}, []models.ChecklistItem{{Text: "only"}})
	if err != nil {
		t.Fatal(err)
	}

	repo.fail = true
	if _, err := svc.SetChecklistItemCompleted(ctx, saved.Checklist[0].ID, true); err != nil {
		t.Fatalf("read failure should be swallowed, got %v", err)
	}

	got, _ := store.GetTask(ctx, saved.ID)
	if got.Completed {
		t.Error("task should not complete when the checklist cannot be read")
	}
}

func TestSyncNotifications(t *testing.T) {
	svc, store, tray := newTestService(t)
	ctx := context.Background()

	pinned := &models.Task{Title: "pinned", PinNotification: true}
	done := &models.Task{Title: "pinned but done", PinNotification: true, Completed: true}
	plain := &models.Task{Title: "plain"}
	for _, task := range []*models.Task{pinned, done, plain} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	shown, err := svc.SyncNotifications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if shown != 1 || !tray.isShowing(pinned.ID) || tray.isShowing(done.ID) || tray.isShowing(plain.ID) {
		t.Errorf("shown=%d showing=%v", shown, tray.showing)
	}
}

func TestGoReportsCompletion(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	task, _ := svc.UpdateTask(ctx, &models.Task{Title: "async"})

	p := svc.Go(ctx, "complete", func(ctx context.Context) error {
		_, err := svc.SetTaskCompleted(ctx, task.ID, true)
		return err
	})
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if p.ID.String() == "" || p.Name != "complete" {
		t.Errorf("unexpected pending: %+v", p)
	}

	got, _ := svc.Task(ctx, task.ID)
	if !got.Completed {
		t.Error("async completion not applied")
	}

	failed := svc.Go(ctx, "missing", func(ctx context.Context) error {
		_, err := svc.SetTaskCompleted(ctx, 9999, true)
		return err
	})
	<-failed.Done()
	if !errors.Is(failed.Err(), db.ErrNotFound) {
		t.Errorf("Err() = %v, want ErrNotFound", failed.Err())
	}

	svc.Wait()
}

func TestPendingWaitHonoursContext(t *testing.T) {
	svc, _, _ := newTestService(t)

	release := make(chan struct{})
	p := svc.Go(context.Background(), "blocked", func(ctx context.Context) error {
		<-release
		return nil
	})
	if p.Err() != nil {
		t.Error("Err() before completion should be nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait error = %v, want deadline exceeded", err)
	}

	close(release)
	svc.Wait()
	select {
	case <-p.Done():
	default:
		t.Error("operation should be done after Service.Wait")
	}
}
