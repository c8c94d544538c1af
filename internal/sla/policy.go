// Package sla computes assignment due-by timestamps from priority and work item type.
package sla

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// Minutes maps a priority to a due-by offset in minutes.
type Minutes map[domain.Priority]int

// Policy is a deterministic lookup table. Type overrides win over the default row;
// a priority missing from an override row falls back to the default row.
type Policy struct {
	Default Minutes                         `yaml:"default"`
	Types   map[domain.WorkItemType]Minutes `yaml:"types"`
}

// DefaultPolicy is used when no policy file is configured.
//
//	type       urgent  high   normal  low
//	(default)  4h      24h    3d      7d
//	ticket     2h      8h     24h     3d
//	position   8h      48h    5d      10d
func DefaultPolicy() *Policy {
	return &Policy{
		Default: Minutes{
			domain.PriorityUrgent: 240,
			domain.PriorityHigh:   1440,
			domain.PriorityNormal: 4320,
			domain.PriorityLow:    10080,
		},
		Types: map[domain.WorkItemType]Minutes{
			domain.WorkItemTicket: {
				domain.PriorityUrgent: 120,
				domain.PriorityHigh:   480,
				domain.PriorityNormal: 1440,
				domain.PriorityLow:    4320,
			},
			domain.WorkItemPosition: {
				domain.PriorityUrgent: 480,
				domain.PriorityHigh:   2880,
				domain.PriorityNormal: 7200,
				domain.PriorityLow:    14400,
			},
		},
	}
}

// Load reads a YAML policy file layered over DefaultPolicy. An empty path
// returns the defaults.
func Load(path string) (*Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sla policy: %w", err)
	}
	var file Policy
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse sla policy: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	for p, m := range file.Default {
		policy.Default[p] = m
	}
	for typ, row := range file.Types {
		if policy.Types[typ] == nil {
			policy.Types[typ] = Minutes{}
		}
		for p, m := range row {
			policy.Types[typ][p] = m
		}
	}
	return policy, nil
}

// Offset returns the due-by duration for a work item type and priority.
func (p *Policy) Offset(typ domain.WorkItemType, priority domain.Priority) time.Duration {
	if row, ok := p.Types[typ]; ok {
		if m, ok := row[priority]; ok {
			return time.Duration(m) * time.Minute
		}
	}
	return time.Duration(p.Default[priority]) * time.Minute
}

// Deadline returns from plus the offset for the type and priority.
func (p *Policy) Deadline(from time.Time, typ domain.WorkItemType, priority domain.Priority) time.Time {
	return from.Add(p.Offset(typ, priority))
}

func (p *Policy) validate() error {
	check := func(row Minutes, where string) error {
		for priority, m := range row {
			if priority.Rank() < 0 {
				return fmt.Errorf("sla policy %s: unknown priority %q", where, priority)
			}
			if m <= 0 {
				return fmt.Errorf("sla policy %s: %s must be positive", where, priority)
			}
		}
		return nil
	}
	if err := check(p.Default, "default"); err != nil {
		return err
	}
	for typ, row := range p.Types {
		if _, err := domain.ParseWorkItemType(string(typ)); err != nil {
			return fmt.Errorf("sla policy: unknown work item type %q", typ)
		}
		if err := check(row, string(typ)); err != nil {
			return err
		}
	}
	return nil
}
