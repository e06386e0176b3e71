// Package stats derives the summary numbers shown next to tasks, habits and courses.
package stats

import (
	"sort"

	"github.com/balkashynov/tend/internal/checklist"
	"github.com/balkashynov/tend/internal/models"
)

// Percent returns part/total as a whole percentage, 0 when total is 0
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return part * 100 / total
}

// CompletionPercent returns the share of completed tasks
func CompletionPercent(tasks []models.Task) int {
	done := 0
	for _, task := range tasks {
		if task.Completed {
			done++
		}
	}
	return Percent(done, len(tasks))
}

// ChecklistPercent returns the share of checked items on a task
func ChecklistPercent(task models.Task) int {
	done, total := checklist.Progress(task.Checklist)
	return Percent(done, total)
}

// WorkspaceSummary counts tasks filed under one workspace. Workspace is nil
// for the bucket of tasks without one.
type WorkspaceSummary struct {
	Workspace *models.Workspace
	Total     int
	Done      int
	Percent   int
}

// Name returns the workspace name, or "(none)" for the unfiled bucket
func (w WorkspaceSummary) Name() string {
	if w.Workspace == nil {
		return "(none)"
	}
	return w.Workspace.Name
}

// SummarizeWorkspaces groups tasks by workspace in the order workspaces are
// given. Tasks without a workspace, or in a workspace not listed, are counted
// in a trailing unfiled bucket, present only when non-empty.
func SummarizeWorkspaces(workspaces []models.Workspace, tasks []models.Task) []WorkspaceSummary {
	index := make(map[uint]int, len(workspaces))
	out := make([]WorkspaceSummary, 0, len(workspaces)+1)
	for i := range workspaces {
		index[workspaces[i].ID] = i
		out = append(out, WorkspaceSummary{Workspace: &workspaces[i]})
	}

	unfiled := WorkspaceSummary{}
	for _, task := range tasks {
		bucket := &unfiled
		if task.WorkspaceID != nil {
			if i, ok := index[*task.WorkspaceID]; ok {
				bucket = &out[i]
			}
		}
		bucket.Total++
		if task.Completed {
			bucket.Done++
		}
	}

	if unfiled.Total > 0 {
		out = append(out, unfiled)
	}
	for i := range out {
		out[i].Percent = Percent(out[i].Done, out[i].Total)
	}
	return out
}

// TagCounts counts open tasks per tag, most used first then by name
func TagCounts(tasks []models.Task) []TagCount {
	counts := make(map[string]int)
	for _, task := range tasks {
		if task.Completed {
			continue
		}
		for _, tag := range task.TagList() {
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// TagCount is one row of TagCounts
type TagCount struct {
	Tag   string
	Count int
}
