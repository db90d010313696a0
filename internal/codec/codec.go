// Package codec converts board tasks to GitHub issue fields and back.
//
// Status, priority, tags and the archive flag travel as labels; description,
// assignee, dates and links travel in the issue body. Decoding is lenient and
// never fails, encoding only rejects a task without a title.
package codec

import (
	"errors"
	"strconv"
	"strings"

	"github.com/robby/ghboard/internal/domain"
)

// ErrEmptyTitle is returned by Encode for a task whose title is blank.
var ErrEmptyTitle = errors.New("task title is required")

// Label prefixes and markers.
const (
	StatusPrefix   = "status:"
	PriorityPrefix = "priority:"
	TagPrefix      = "tag:"
	ArchivedLabel  = "archived"
)

// Defaults applied when an issue carries no status or priority label.
const (
	DefaultStatus   = "todo"
	DefaultPriority = domain.PriorityMedium
)

// Encode converts a task into issue fields. The title is passed through unchanged.
func Encode(task domain.Task) (domain.IssueFields, error) {
	if strings.TrimSpace(task.Title) == "" {
		return domain.IssueFields{}, ErrEmptyTitle
	}

	body := renderBody(Body{
		Description: strings.TrimSpace(task.Description),
		Links:       cleanList(task.Links, false),
	}, task.Assignee, task.DueDate, task.CreatedAt, task.UpdatedAt)

	return domain.IssueFields{
		Title:  task.Title,
		Body:   body,
		Labels: Labels(task),
	}, nil
}

// Labels returns the label set that encodes a task's status, priority, tags and
// archive flag.
func Labels(task domain.Task) []string {
	status := task.Status.Bare()
	if status == "" {
		status = DefaultStatus
	}
	priority := task.Priority
	if priority == "" {
		priority = DefaultPriority
	}

	tags := cleanList(task.Tags, true)
	labels := make([]string, 0, 3+len(tags))
	labels = append(labels, StatusPrefix+status, PriorityPrefix+string(priority))
	for _, tag := range tags {
		labels = append(labels, TagPrefix+tag)
	}
	if task.Archived {
		labels = append(labels, ArchivedLabel)
	}
	return labels
}

// Decode converts an issue into a task. Missing labels and body sections fall back
// to defaults; unknown labels are ignored.
func Decode(issue domain.Issue) domain.Task {
	labels := ParseLabels(issue.Labels)
	body := ParseBody(issue.Body)

	task := domain.Task{
		Title:       issue.Title,
		Description: body.Description,
		Status:      labels.Status,
		Priority:    labels.Priority,
		Assignee:    body.Value(keyAssignee),
		DueDate:     body.Value(keyDueDate),
		Tags:        labels.Tags,
		Links:       body.Links,
		CreatedAt:   body.Value(keyCreatedAt),
		UpdatedAt:   body.Value(keyUpdatedAt),
		Archived:    labels.Archived,
	}
	if issue.Number > 0 {
		task.ID = strconv.Itoa(issue.Number)
	}
	if task.CreatedAt == "" {
		task.CreatedAt = issue.CreatedAt
	}
	if task.UpdatedAt == "" {
		task.UpdatedAt = issue.UpdatedAt
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	if task.Links == nil {
		task.Links = []string{}
	}
	return task
}

// LabelSet is the decoded meaning of an issue's labels.
type LabelSet struct {
	Status   domain.Status
	Priority domain.Priority
	Tags     []string
	Archived bool
	Unknown  []string // labels that carry no board meaning
}

// ParseLabels extracts status, priority, tags and the archive flag. The first
// status and priority label win; the result does not depend on label order otherwise.
func ParseLabels(names []string) LabelSet {
	var (
		set         LabelSet
		status      string
		priority    string
		hasStatus   bool
		hasPriority bool
	)
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, StatusPrefix):
			if !hasStatus {
				status, hasStatus = strings.TrimPrefix(name, StatusPrefix), true
			}
		case strings.HasPrefix(name, PriorityPrefix):
			if !hasPriority {
				priority, hasPriority = strings.TrimPrefix(name, PriorityPrefix), true
			}
		case strings.HasPrefix(name, TagPrefix):
			set.Tags = append(set.Tags, strings.TrimPrefix(name, TagPrefix))
		case name == ArchivedLabel:
			set.Archived = true
		default:
			set.Unknown = append(set.Unknown, name)
		}
	}
	if status == "" {
		status = DefaultStatus
	}
	if priority == "" {
		priority = string(DefaultPriority)
	}
	set.Status = domain.StatusFromBare(status)
	set.Priority = domain.Priority(priority)
	return set
}

// cleanList trims entries and drops blanks; with dedupe it also drops repeats.
func cleanList(items []string, dedupe bool) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if dedupe {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}
