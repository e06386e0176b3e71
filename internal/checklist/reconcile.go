// Package checklist computes the writes needed to bring a task's persisted
// checklist in line with an edited one.
package checklist

import "github.com/balkashynov/tend/internal/models"

// Plan is the set of writes that turns the persisted checklist into the
// submitted one. Inserts, updates and deletes touch disjoint item IDs.
type Plan struct {
	TaskID  uint
	Inserts []models.ChecklistItem
	Updates []models.ChecklistItem
	Deletes []uint
	// Checked counts items the plan turns done: inserts that arrive completed
	// and updates of persisted items that were still open.
	Checked int
}

// Empty reports whether applying the plan would change nothing
func (p Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// ChecksAny reports whether applying the plan checks at least one item.
// Rewriting an item that is already done does not count.
func (p Plan) ChecksAny() bool {
	return p.Checked > 0
}

// Reconcile diffs the target checklist against the persisted one.
//
// Target items with ID 0 are inserted under taskID. Target items with a real
// ID overwrite the stored text and completion flag (last write wins). Persisted
// items whose ID is absent from the target are deleted, so an empty target
// clears the checklist. Each target item takes its index as Position.
// A target ID that is not persisted stays in Updates; the store rejects it.
func Reconcile(taskID uint, persisted, target []models.ChecklistItem) Plan {
	plan := Plan{TaskID: taskID}

	stored := make(map[uint]models.ChecklistItem, len(persisted))
	for _, item := range persisted {
		stored[item.ID] = item
	}

	keep := make(map[uint]bool, len(target))
	for i, item := range target {
		item.TaskID = taskID
		item.Position = i
		if item.IsNew() {
			if item.Completed {
				plan.Checked++
			}
			plan.Inserts = append(plan.Inserts, item)
			continue
		}
		keep[item.ID] = true
		if prev, ok := stored[item.ID]; ok && item.Completed && !prev.Completed {
			plan.Checked++
		}
		plan.Updates = append(plan.Updates, item)
	}

	for _, item := range persisted {
		if !keep[item.ID] {
			plan.Deletes = append(plan.Deletes, item.ID)
		}
	}

	return plan
}

// AllCompleted reports whether a checklist is non-empty and every item is done.
// An empty checklist is never complete.
func AllCompleted(items []models.ChecklistItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Completed {
			return false
		}
	}
	return true
}

// Progress returns the number of completed items and the total
func Progress(items []models.ChecklistItem) (done, total int) {
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	return done, len(items)
}
