package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/balkashynov/tend/internal/models"
)

// ParsedTask represents a task parsed from quick-add syntax
type ParsedTask struct {
	Title     string
	Workspace string
	Tags      []string
	Priority  int
	Deadline  *time.Time
	Pin       bool
	Errors    []string
}

var (
	tagRegex       = regexp.MustCompile(`(^|\s)#([a-zA-Z0-9_,-]+)`)
	workspaceRegex = regexp.MustCompile(`(^|\s)@([a-zA-Z0-9_-]+)`)
	priorityRegex  = regexp.MustCompile(`(^|\s)\+([a-zA-Z0-9]+)`)
	dueRegex       = regexp.MustCompile(`(^|\s)due:([^\s]+)`)
	pinRegex       = regexp.MustCompile(`(^|\s)!pin\b`)
)

// ParseTitle extracts metadata from a task title.
// Syntax: "Task title #tag1,tag2 @workspace +priority due:tomorrow !pin"
func ParseTitle(input string) ParsedTask {
	result := ParsedTask{
		Tags:   []string{},
		Errors: []string{},
	}

	for _, match := range tagRegex.FindAllStringSubmatch(input, -1) {
		for _, tag := range strings.Split(match[2], ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				result.Tags = append(result.Tags, tag)
			}
		}
	}
	input = tagRegex.ReplaceAllString(input, " ")

	if m := workspaceRegex.FindStringSubmatch(input); len(m) > 2 {
		result.Workspace = m[2]
		input = workspaceRegex.ReplaceAllString(input, " ")
	}

	if m := priorityRegex.FindStringSubmatch(input); len(m) > 2 {
		priority, ok := ParsePriority(m[2])
		if ok {
			result.Priority = priority
		} else {
			result.Errors = append(result.Errors, "Invalid priority '"+m[2]+"'. Use: low, medium, high, 1, 2, or 3")
		}
		input = priorityRegex.ReplaceAllString(input, " ")
	}

	if m := dueRegex.FindStringSubmatch(input); len(m) > 2 {
		deadline, err := ParseDueDate(m[2])
		if err != nil {
			result.Errors = append(result.Errors, "Invalid due date '"+m[2]+"': "+err.Error())
		} else {
			result.Deadline = deadline
		}
		input = dueRegex.ReplaceAllString(input, " ")
	}

	if pinRegex.MatchString(input) {
		result.Pin = true
		input = pinRegex.ReplaceAllString(input, " ")
	}

	result.Title = strings.Join(strings.Fields(input), " ")
	return result
}

// ParsePriority accepts a priority name or number and returns its level.
// An empty string or "none" clears the priority.
func ParsePriority(priority string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "", "0", "none":
		return models.PriorityNone, true
	case "1", "low":
		return models.PriorityLow, true
	case "2", "medium", "med":
		return models.PriorityMedium, true
	case "3", "high":
		return models.PriorityHigh, true
	default:
		return 0, false
	}
}
