// internal/store/view.go
//
// The derived view: a pure projection over (tasks, filter, sort). It holds
// no state between calls and never touches the store, so rerunning it with
// the same inputs always yields the same output.

package store

import (
	"sort"
	"strings"
	"time"

	"sprintdeck/internal/board"
)

// View filters and sorts a task list for display. Filtering is AND across
// dimensions and OR within each dimension's set; empty dimensions impose no
// constraint. Sorting is stable, so tasks that compare equal keep their
// relative input order.
func View(tasks []board.Task, filter board.FilterOptions, sortOpts board.SortOptions) []board.Task {
	out := make([]board.Task, 0, len(tasks))
	for _, task := range tasks {
		if matchesFilter(task, filter) {
			out = append(out, task)
		}
	}
	if sortOpts.Field == "" {
		return out
	}
	desc := sortOpts.Direction == board.SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		return lessTask(out[i], out[j], sortOpts.Field, desc)
	})
	return out
}

func matchesFilter(task board.Task, filter board.FilterOptions) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, task.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, task.Priority) {
		return false
	}
	if len(filter.AssigneeIDs) > 0 && !containsString(filter.AssigneeIDs, task.AssigneeID) {
		return false
	}
	if len(filter.Tags) > 0 && !intersects(filter.Tags, task.Tags) {
		return false
	}
	return true
}

// sortKey extracts the comparable value for a field along with whether the
// field is present. Absent values sort before present ones ascending and
// after them descending, which keeps the comparator a total order.
type sortKey struct {
	str     string
	num     float64
	instant time.Time
	kind    keyKind
	present bool
}

type keyKind int

const (
	keyString keyKind = iota
	keyNumber
	keyInstant
)

func taskSortKey(task board.Task, field board.SortField) sortKey {
	switch field {
	case board.SortByTitle:
		return sortKey{kind: keyString, str: task.Title, present: task.Title != ""}
	case board.SortByStatus:
		return sortKey{kind: keyString, str: string(task.Status), present: task.Status != ""}
	case board.SortByPriority:
		rank := task.Priority.Rank()
		return sortKey{kind: keyNumber, num: float64(rank), present: rank > 0}
	case board.SortByStoryPoints:
		return sortKey{kind: keyNumber, num: float64(task.StoryPoints), present: true}
	case board.SortByCreatedAt:
		return sortKey{kind: keyInstant, instant: task.CreatedAt, present: !task.CreatedAt.IsZero()}
	case board.SortByUpdatedAt:
		return sortKey{kind: keyInstant, instant: task.UpdatedAt, present: !task.UpdatedAt.IsZero()}
	case board.SortByDueDate:
		if task.DueDate == nil {
			return sortKey{kind: keyInstant}
		}
		return sortKey{kind: keyInstant, instant: *task.DueDate, present: true}
	}
	return sortKey{kind: keyString, str: task.ID, present: task.ID != ""}
}

func lessTask(a, b board.Task, field board.SortField, desc bool) bool {
	ka := taskSortKey(a, field)
	kb := taskSortKey(b, field)
	if ka.present != kb.present {
		// Missing first ascending, missing last descending.
		if desc {
			return ka.present
		}
		return !ka.present
	}
	if !ka.present {
		return false
	}
	cmp := 0
	switch ka.kind {
	case keyString:
		cmp = strings.Compare(ka.str, kb.str)
	case keyNumber:
		switch {
		case ka.num < kb.num:
			cmp = -1
		case ka.num > kb.num:
			cmp = 1
		}
	case keyInstant:
		switch {
		case ka.instant.Before(kb.instant):
			cmp = -1
		case ka.instant.After(kb.instant):
			cmp = 1
		}
	}
	if desc {
		return cmp > 0
	}
	return cmp < 0
}

func containsStatus(set []board.Status, status board.Status) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}

func containsPriority(set []board.Priority, priority board.Priority) bool {
	for _, candidate := range set {
		if candidate == priority {
			return true
		}
	}
	return false
}

func containsString(set []string, value string) bool {
	for _, candidate := range set {
		if candidate == value {
			return true
		}
	}
	return false
}

func intersects(set, tags []string) bool {
	for _, tag := range tags {
		if containsString(set, tag) {
			return true
		}
	}
	return false
}
