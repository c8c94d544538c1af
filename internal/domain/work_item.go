package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// WorkItemType enumerates the kinds of work routed through admission.
type WorkItemType string

const (
	WorkItemTicket   WorkItemType = "ticket"
	WorkItemDossier  WorkItemType = "dossier"
	WorkItemPosition WorkItemType = "position"
	WorkItemTask     WorkItemType = "task"
)

// WorkItemTypes lists every known type.
var WorkItemTypes = []WorkItemType{WorkItemTicket, WorkItemDossier, WorkItemPosition, WorkItemTask}

// ParseWorkItemType validates a work item type.
func ParseWorkItemType(v string) (WorkItemType, error) {
	t := WorkItemType(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range WorkItemTypes {
		if t == known {
			return t, nil
		}
	}
	return "", ErrInvalidWorkItemType
}

// Priority orders work items. Urgent is served first.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Priorities lists priorities from most to least urgent.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow}

// ParsePriority validates a priority value.
func ParsePriority(v string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(v)))
	if p.Rank() < 0 {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Rank returns 0 for urgent through 3 for low, -1 when unknown.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if p == known {
			return i
		}
	}
	return -1
}

var skillPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,63}$`)

// NormalizeSkills lower-cases, validates, de-duplicates and sorts skills.
func NormalizeSkills(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		skill := strings.ToLower(strings.TrimSpace(s))
		if !skillPattern.MatchString(skill) {
			return nil, ErrInvalidSkill
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	sort.Strings(out)
	return out, nil
}

// WorkItem is a unit of work requiring assignment. It is immutable once created.
type WorkItem struct {
	ID             string
	Type           WorkItemType
	RequiredSkills []string
	Priority       Priority
	// UnitID optionally restricts candidates to one unit.
	UnitID    *string
	CreatedAt time.Time
}

// Validate checks enum fields and normalizes the id, unit scope and skills
// in place.
func (w *WorkItem) Validate() error {
	w.ID = strings.TrimSpace(w.ID)
	if w.ID == "" {
		return ErrMissingWorkItemID
	}
	t, err := ParseWorkItemType(string(w.Type))
	if err != nil {
		return err
	}
	p, err := ParsePriority(string(w.Priority))
	if err != nil {
		return err
	}
	skills, err := NormalizeSkills(w.RequiredSkills)
	if err != nil {
		return err
	}
	w.Type, w.Priority, w.RequiredSkills = t, p, skills
	if w.UnitID != nil {
		unitID := strings.TrimSpace(*w.UnitID)
		w.UnitID = &unitID
		if unitID == "" {
			w.UnitID = nil
		}
	}
	return nil
}
