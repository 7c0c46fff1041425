package task

import (
	"math"
	"sort"
	"time"
)

// SortKey selects the comparator used by SortTasks.
type SortKey string

const (
	SortByDueDate   SortKey = "dueDate"
	SortByPriority  SortKey = "priority"
	SortByStatus    SortKey = "status"
	SortByCreatedAt SortKey = "createdAt"
)

// FilterAll matches every task when passed as a status or priority filter.
const FilterAll = "ALL"

// IsDueToday reports whether due falls on the same calendar day as now, in
// now's location. A nil due date is never due today.
func IsDueToday(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	start := startOfDay(now)
	end := start.AddDate(0, 0, 1)
	d := due.In(now.Location())
	return !d.Before(start) && d.Before(end)
}

// IsOverdue reports whether due is strictly before now and not due today.
// A task due earlier today is still "due today", never overdue, so the two
// classifications are mutually exclusive for every due date.
func IsOverdue(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	return due.Before(now) && !IsDueToday(due, now)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FilterByStatus keeps tasks whose status equals the given value. The
// FilterAll sentinel is the identity filter and returns the input unchanged.
func FilterByStatus(tasks []Task, status string) []Task {
	if status == FilterAll {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == Status(status) {
			out = append(out, t)
		}
	}
	return out
}

// FilterByPriority keeps tasks whose priority equals the given value. The
// FilterAll sentinel is the identity filter and returns the input unchanged.
func FilterByPriority(tasks []Task, priority string) []Task {
	if priority == FilterAll {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Priority == Priority(priority) {
			out = append(out, t)
		}
	}
	return out
}

// SortTasks returns a sorted copy of tasks; the input slice is not mutated
// and ties preserve input order.
//
//	dueDate:   ascending, tasks without a due date strictly last
//	priority:  HIGH, MEDIUM, LOW
//	status:    TODO, IN_PROGRESS, DONE
//	createdAt: newest first
//
// An unknown key returns the copy unsorted.
func SortTasks(tasks []Task, key SortKey) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)

	switch key {
	case SortByDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case SortByPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.weight() < out[j].Priority.weight()
		})
	case SortByStatus:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Status.weight() < out[j].Status.weight()
		})
	case SortByCreatedAt:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// Summary holds the dashboard aggregates over a task collection.
type Summary struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	InProgress     int `json:"inProgress"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completionRate"`
}

// Aggregate counts tasks by status and computes the completion rate as a
// whole percentage of DONE tasks, rounded to the nearest integer with ties
// rounding up. An empty collection has a completion rate of 0.
func Aggregate(tasks []Task) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusDone:
			s.Completed++
		case StatusInProgress:
			s.InProgress++
		case StatusTodo:
			s.Pending++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed*100) / float64(s.Total)))
	}
	return s
}
