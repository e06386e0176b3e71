package db

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/balkashynov/tend/internal/checklist"
	"github.com/balkashynov/tend/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{
		Path:   filepath.Join(t.TempDir(), "tend.db"),
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateTask(t *testing.T, s *Store, title string) *models.Task {
	t.Helper()
	task := &models.Task{Title: title}
	if err := s.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask(%q) failed: %v", title, err)
	}
	return task
}

func itemIDs(items []models.ChecklistItem) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCreateAndGetTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	due := time.Date(2030, 1, 2, 23, 59, 59, 0, time.UTC)
	task := &models.Task{
		Title:           "Write report",
		Description:     "quarterly",
		Deadline:        &due,
		Priority:        models.PriorityHigh,
		Tags:            "work,writing",
		PinNotification: true,
	}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected an assigned id")
	}

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Write report" || got.Priority != models.PriorityHigh || !got.PinNotification {
		t.Errorf("unexpected task: %+v", got)
	}
	if got.Deadline == nil || !got.Deadline.Equal(due) {
		t.Errorf("deadline = %v, want %v", got.Deadline, due)
	}

	if _, err := s.GetTask(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask(9999) error = %v, want ErrNotFound", err)
	}
	if err := s.CreateTask(ctx, &models.Task{Title: "   "}); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestSaveTaskOverwritesZeroValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &models.Task{Title: "pinned", PinNotification: true, Priority: 2, Completed: true}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}
	if task.CompletedAt == nil {
		t.Error("expected CompletedAt to be stamped on create")
	}

	task.PinNotification = false
	task.Priority = 0
	task.Completed = false
	if err := s.SaveTask(ctx, task); err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}

	got, _ := s.GetTask(ctx, task.ID)
	if got.PinNotification || got.Priority != 0 || got.Completed || got.CompletedAt != nil {
		t.Errorf("zero values not written: %+v", got)
	}

	if err := s.SaveTask(ctx, &models.Task{ID: 4242, Title: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveTask on missing task error = %v, want ErrNotFound", err)
	}
}

func TestSetTaskFlags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := mustCreateTask(t, s, "flags")

	got, err := s.SetTaskCompleted(ctx, task.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Completed || got.CompletedAt == nil {
		t.Errorf("completion not stored: %+v", got)
	}

	got, err = s.SetTaskCompleted(ctx, task.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Completed || got.CompletedAt != nil {
		t.Errorf("completion not cleared: %+v", got)
	}

	got, err = s.SetTaskPinned(ctx, task.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !got.PinNotification {
		t.Error("pin not stored")
	}

	if _, err := s.SetTaskPinned(ctx, 777, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetTaskPinned on missing task error = %v, want ErrNotFound", err)
	}
}

func TestDeleteTaskCascadesChecklist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := mustCreateTask(t, s, "with items")
	other := mustCreateTask(t, s, "other")

	_, err := s.ApplyChecklistPlan(ctx, checklist.Reconcile(task.ID, nil, []models.ChecklistItem{{Text: "a"}, {Text: "b"}}))
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.ApplyChecklistPlan(ctx, checklist.Reconcile(other.ID, nil, []models.ChecklistItem{{Text: "keep"}}))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	var orphans int64
	s.db.Model(&models.ChecklistItem{}).Where("task_id = ?", task.ID).Count(&orphans)
	if orphans != 0 {
		t.Errorf("found %d orphaned checklist items", orphans)
	}
	items, _ := s.ChecklistItems(ctx, other.ID)
	if len(items) != 1 {
		t.Errorf("other task lost its checklist: %+v", items)
	}
	if err := s.DeleteTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteTask error = %v, want ErrNotFound", err)
	}
}

func TestApplyChecklistPlanScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.db.Create(&models.Task{ID: 5, Title: "task five"}).Error; err != nil {
		t.Fatal(err)
	}
	seed := []models.ChecklistItem{
		{ID: 1, TaskID: 5, Text: "a"},
		{ID: 2, TaskID: 5, Text: "b", Position: 1},
	}
	if err := s.db.Create(&seed).Error; err != nil {
		t.Fatal(err)
	}

	persisted, err := s.ChecklistItems(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	plan := checklist.Reconcile(5, persisted, []models.ChecklistItem{
		{ID: 1, Text: "a", Completed: true},
		{ID: 0, Text: "c"},
	})
	inserted, err := s.ApplyChecklistPlan(ctx, plan)
	if err != nil {
		t.Fatalf("ApplyChecklistPlan failed: %v", err)
	}
	if len(inserted) != 1 || inserted[0].ID == 0 || inserted[0].TaskID != 5 {
		t.Fatalf("unexpected inserted items: %+v", inserted)
	}

	items, _ := s.ChecklistItems(ctx, 5)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
	if items[0].ID != 1 || !items[0].Completed || items[0].Text != "a" {
		t.Errorf("item 1 not updated: %+v", items[0])
	}
	if items[1].ID != inserted[0].ID || items[1].Text != "c" || items[1].TaskID != 5 {
		t.Errorf("item c not inserted: %+v", items[1])
	}
	if _, err := s.GetChecklistItem(ctx, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("item 2 should be deleted, got err %v", err)
	}
}

func TestApplyChecklistPlanFinalSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := mustCreateTask(t, s, "set")

	first, err := s.ApplyChecklistPlan(ctx, checklist.Reconcile(task.ID, nil,
		[]models.ChecklistItem{{Text: "1"}, {Text: "2"}, {Text: "3"}, {Text: "4"}}))
	if err != nil {
		t.Fatal(err)
	}

	// Keep items 2 and 4, add two new ones
	target := []models.ChecklistItem{first[1], {Text: "5"}, first[3], {Text: "6"}}
	persisted, _ := s.ChecklistItems(ctx, task.ID)
	inserted, err := s.ApplyChecklistPlan(ctx, checklist.Reconcile(task.ID, persisted, target))
	if err != nil {
		t.Fatal(err)
	}

	want := itemIDs([]models.ChecklistItem{first[1], first[3], inserted[0], inserted[1]})
	items, _ := s.ChecklistItems(ctx, task.ID)
	if got := itemIDs(items); !equalIDs(got, want) {
		t.Errorf("final ids = %v, want %v", got, want)
	}
	for _, dropped := range []uint{first[0].ID, first[2].ID} {
		if _, err := s.GetChecklistItem(ctx, dropped); !errors.Is(err, ErrNotFound) {
			t.Errorf("item #%d should have been deleted", dropped)
		}
	}

	// Display order follows the target list
	var texts []string
	for _, item := range items {
		texts = append(texts, item.Text)
	}
	if len(texts) != 4 || texts[0] != "2" || texts[1] != "5" || texts[2] != "4" || texts[3] != "6" {
		t.Errorf("order = %v, want [2 5 4 6]", texts)
	}
}

func TestApplyChecklistPlanIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := mustCreateTask(t, s, "idempotent")

	target := []models.ChecklistItem{{Text: "x"}, {Text: "y", Completed: true}}
	inserted, err := s.ApplyChecklistPlan(ctx, checklist.Reconcile(task.ID, nil, target))
	if err != nil {
		t.Fatal(err)
	}

	// Second and third application use the assigned ids
	apply := func() []models.ChecklistItem {
		persisted, err := s.ChecklistItems(ctx, task.ID)
		if err != nil {
			t.Fatal(err)
		}
		plan := checklist.Reconcile(task.ID, persisted, inserted)
		if len(plan.Inserts) != 0 || len(plan.Deletes) != 0 {
			t.Fatalf("expected update-only plan, got %+v", plan)
		}
		if _, err := s.ApplyChecklistPlan(ctx, plan); err != nil {
			t.Fatal(err)
		}
		items, _ := s.ChecklistItems(ctx, task.ID)
		return items
	}

	second := apply()
	third := apply()
	if len(second) != len(third) {
		t.Fatalf("lengths differ: %d vs %d", len(second), len(third))
	}
	for i := range second {
		if second[i] != third[i] {
			t.Errorf("item %d changed: %+v -> %+v", i, second[i], third[i])
		}
	}
}

func TestApplyChecklistPlanEmptyTargetClears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := mustCreateTask(t, s, "clear")

	if _, err := s.ApplyChecklistPlan(ctx, checklist.Reconcile(task.ID, nil, []models.ChecklistItem{{Text: "a"}, {Text: "b"}})); err != nil {
		t.Fatal(err)
	}
	persisted, _ := s.ChecklistItems(ctx, task.ID)
	if _, err := s.ApplyChecklistPlan(ctx, checklist.Reconcile(task.ID, persisted, nil)); err != nil {
		t.Fatal(err)
	}
	items, _ := s.ChecklistItems(ctx, task.ID)
	if len(items) != 0 {
		t.Errorf("expected empty checklist, got %+v", items)
	}
}

func TestApplyChecklistPlanScopedToTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreateTask(t, s, "a")
	b := mustCreateTask(t, s, "b")

	bItems, _ := s.ApplyChecklistPlan(ctx, checklist.Reconcile(b.ID, nil, []models.ChecklistItem{{Text: "b's"}}))

	// A stale id from another task is rejected and the whole plan rolls back
	stale := bItems[0]
	stale.Text = "hijacked"
	plan := checklist.Reconcile(a.ID, nil, []models.ChecklistItem{{Text: "new"}, stale})
	if _, err := s.ApplyChecklistPlan(ctx, plan); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	got, _ := s.GetChecklistItem(ctx, stale.ID)
	if got.Text != "b's" || got.TaskID != b.ID {
		t.Errorf("item of task b was modified: %+v", got)
	}
	if items, _ := s.ChecklistItems(ctx, a.ID); len(items) != 0 {
		t.Errorf("insert should have rolled back, got %+v", items)
	}
}

func TestSetChecklistItemCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := mustCreateTask(t, s, "check")
	inserted, _ := s.ApplyChecklistPlan(ctx, checklist.Reconcile(task.ID, nil, []models.ChecklistItem{{Text: "a"}}))

	item, err := s.SetChecklistItemCompleted(ctx, inserted[0].ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !item.Completed {
		t.Error("item not completed")
	}
	if _, err := s.SetChecklistItemCompleted(ctx, 999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListTasksFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ws := &models.Workspace{Name: "Home"}
	if err := s.CreateWorkspace(ctx, ws); err != nil {
		t.Fatal(err)
	}

	tasks := []*models.Task{
		{Title: "Buy milk", Tags: "errands,food", WorkspaceID: &ws.ID},
		{Title: "Learn golang", Tags: "golang"},
		{Title: "Go for a run", Tags: "go, health", Completed: true},
	}
	for _, task := range tasks {
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	done := true
	tests := []struct {
		name   string
		filter TaskFilter
		want   []string
	}{
		{"all", TaskFilter{OrderBy: "id"}, []string{"Buy milk", "Learn golang", "Go for a run"}},
		{"workspace", TaskFilter{WorkspaceID: &ws.ID}, []string{"Buy milk"}},
		{"no workspace", TaskFilter{NoWorkspace: true, OrderBy: "id"}, []string{"Learn golang", "Go for a run"}},
		{"completed", TaskFilter{Completed: &done}, []string{"Go for a run"}},
		{"exact tag", TaskFilter{Tag: "go"}, []string{"Go for a run"}},
		{"search", TaskFilter{Search: "MILK"}, []string{"Buy milk"}},
		{"search tags", TaskFilter{Search: "golang"}, []string{"Learn golang"}},
		{"limit", TaskFilter{OrderBy: "id", Limit: 1}, []string{"Buy milk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTasks(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			var titles []string
			for _, task := range got {
				titles = append(titles, task.Title)
			}
			if len(titles) != len(tt.want) {
				t.Fatalf("got %v, want %v", titles, tt.want)
			}
			for i := range titles {
				if titles[i] != tt.want[i] {
					t.Errorf("got %v, want %v", titles, tt.want)
					break
				}
			}
		})
	}

	if _, err := s.ListTasks(ctx, TaskFilter{OrderBy: "random()"}); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestWorkspaceLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ws := &models.Workspace{Name: "Work"}
	if err := s.CreateWorkspace(ctx, ws); err != nil {
		t.Fatal(err)
	}
	if ws.Color != models.DefaultWorkspaceColor {
		t.Errorf("color = %q, want default", ws.Color)
	}
	if err := s.CreateWorkspace(ctx, &models.Workspace{Name: "work"}); err == nil {
		t.Error("expected duplicate name error")
	}

	task := &models.Task{Title: "in work", WorkspaceID: &ws.ID}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SetWorkspaceArchived(ctx, ws.ID, true); err != nil {
		t.Fatal(err)
	}
	active, _ := s.ListWorkspaces(ctx, false)
	if len(active) != 0 {
		t.Errorf("archived workspace still listed: %+v", active)
	}
	all, _ := s.ListWorkspaces(ctx, true)
	if len(all) != 1 || !all[0].Archived {
		t.Errorf("unexpected workspaces: %+v", all)
	}

	if err := s.DeleteWorkspace(ctx, ws.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("task should survive workspace deletion: %v", err)
	}
	if got.WorkspaceID != nil {
		t.Errorf("workspace_id = %v, want nil", *got.WorkspaceID)
	}
}

func TestHabitLogUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	habit := &models.Habit{Name: "Read"}
	if err := s.CreateHabit(ctx, habit); err != nil {
		t.Fatal(err)
	}

	first, err := s.LogHabit(ctx, habit.ID, "2026-10-01", true)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.LogHabit(ctx, habit.ID, "2026-10-01", false)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID || second.Done {
		t.Errorf("upsert did not replace entry: %+v -> %+v", first, second)
	}
	if _, err := s.LogHabit(ctx, habit.ID, "2026-10-02", true); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetHabit(ctx, habit.ID)
	if len(got.History) != 2 || got.History[0].Day != "2026-10-01" {
		t.Errorf("unexpected history: %+v", got.History)
	}

	if err := s.UnlogHabit(ctx, habit.ID, "2026-10-02"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteHabit(ctx, habit.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LogHabit(ctx, habit.ID, "2026-10-03", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("logging a deleted habit error = %v, want ErrNotFound", err)
	}
}

func TestCourseAttendance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	course := &models.Course{Name: "Algorithms"}
	if err := s.CreateCourse(ctx, course); err != nil {
		t.Fatal(err)
	}
	if course.RequiredPercent != models.DefaultRequiredPercent {
		t.Errorf("required = %d, want default", course.RequiredPercent)
	}

	if _, err := s.RecordAttendance(ctx, course.ID, "2026-10-05", "late", ""); err == nil {
		t.Error("expected invalid status error")
	}
	if _, err := s.RecordAttendance(ctx, course.ID, "2026-10-05", models.AttendanceAbsent, ""); err != nil {
		t.Fatal(err)
	}
	rec, err := s.RecordAttendance(ctx, course.ID, "2026-10-05", models.AttendancePresent, "came late")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != models.AttendancePresent || rec.Note != "came late" {
		t.Errorf("upsert did not replace record: %+v", rec)
	}

	got, _ := s.GetCourse(ctx, course.ID)
	if len(got.Records) != 1 {
		t.Errorf("expected one record, got %+v", got.Records)
	}

	inRange, _ := s.AttendanceInRange(ctx, "2026-10-01", "2026-10-31")
	if len(inRange) != 1 {
		t.Errorf("AttendanceInRange returned %d records", len(inRange))
	}

	if err := s.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatal(err)
	}
	inRange, _ = s.AttendanceInRange(ctx, "2026-10-01", "2026-10-31")
	if len(inRange) != 0 {
		t.Errorf("records survived course deletion: %+v", inRange)
	}
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
