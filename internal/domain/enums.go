package domain

import (
	"fmt"
	"strings"
)

// Status is the review state of a process, subprocess or task.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusNeedsFix Status = "Needs Fix"
)

// AllStatuses lists the statuses in display order.
var AllStatuses = []Status{StatusPending, StatusApproved, StatusNeedsFix}

// Valid reports whether s is one of the known review statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusNeedsFix:
		return true
	}
	return false
}

var statusAliases = map[string]Status{
	"pending":   StatusPending,
	"approved":  StatusApproved,
	"approve":   StatusApproved,
	"needs fix": StatusNeedsFix,
	"needs_fix": StatusNeedsFix,
	"needs-fix": StatusNeedsFix,
	"needsfix":  StatusNeedsFix,
	"fix":       StatusNeedsFix,
}

// ParseStatus converts user input into a Status, case-insensitively.
func ParseStatus(s string) (Status, error) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q (want pending, approved or needs_fix)", s)
}

// StatusFilter selects processes by status. The zero value and FilterAll
// match every status.
type StatusFilter string

// FilterAll disables status filtering.
const FilterAll StatusFilter = "All"

// FilterFor returns a filter that matches only s.
func FilterFor(s Status) StatusFilter {
	return StatusFilter(s)
}

// ParseStatusFilter accepts "all" (or empty) plus anything ParseStatus accepts.
func ParseStatusFilter(s string) (StatusFilter, error) {
	if s == "" || strings.EqualFold(s, string(FilterAll)) {
		return FilterAll, nil
	}
	st, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	return FilterFor(st), nil
}

// IsAll reports whether the filter matches every status.
func (f StatusFilter) IsAll() bool {
	return f == "" || f == FilterAll
}

// Matches reports whether s passes the filter.
func (f StatusFilter) Matches(s Status) bool {
	return f.IsAll() || Status(f) == s
}

// Level identifies a tier of the review hierarchy.
type Level string

const (
	LevelProcess    Level = "process"
	LevelSubprocess Level = "subprocess"
	LevelTask       Level = "task"
)

// ParseLevel accepts process, subprocess or task. Empty means auto-detect.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case "", LevelProcess, LevelSubprocess, LevelTask:
		return l, nil
	}
	return "", fmt.Errorf("invalid level %q (want process, subprocess or task)", s)
}
