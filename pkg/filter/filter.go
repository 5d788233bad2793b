// Package filter provides fragment ladder filtering
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ChrisMcGann/FragMass/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	Termini []core.Terminus // Keep only these termini (nil = all)
	MinMass float64         // Drop fragments lighter than this (0 = no bound)
	MaxMass float64         // Drop fragments heavier than this (0 = no bound)
	TopN    int             // Keep only the N heaviest fragments (0 = no limit)
	Kind    core.MassKind   // Mass used for the window and top-N
}

// ParseTermini parses a list like "n,c" or ["n", "c"] into termini
func ParseTermini(values []string) ([]core.Terminus, error) {
	var termini []core.Terminus
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			term, err := core.ParseTerminus(part)
			if err != nil {
				return nil, err
			}
			termini = append(termini, term)
		}
	}
	return termini, nil
}

// Validate checks the configuration for contradictory bounds
func (c *Config) Validate() error {
	if c.MinMass < 0 || c.MaxMass < 0 {
		return &core.ValidationError{Field: "filter", Message: "mass bounds must be non-negative"}
	}
	if c.MaxMass > 0 && c.MinMass > c.MaxMass {
		return &core.ValidationError{
			Field:   "filter",
			Message: fmt.Sprintf("min mass %.4f is above max mass %.4f", c.MinMass, c.MaxMass),
		}
	}
	if c.TopN < 0 {
		return &core.ValidationError{Field: "filter", Message: "top-n must be non-negative"}
	}
	return nil
}

// Apply applies all configured filters to a ladder
func (c *Config) Apply(l *core.Ladder) error {
	if err := c.Validate(); err != nil {
		return err
	}

	// Filter by terminus first
	if len(c.Termini) > 0 {
		c.filterByTerminus(l)
	}

	// Apply mass window
	if c.MinMass > 0 || c.MaxMass > 0 {
		c.filterByMass(l)
	}

	// Apply top-N filter
	if c.TopN > 0 {
		c.filterTopN(l)
	}

	// Ensure fragments are sorted after all filtering
	sortLadder(l)

	return nil
}

// filterByTerminus keeps only fragments of the configured termini
func (c *Config) filterByTerminus(l *core.Ladder) {
	var filtered []core.Fragment
	for _, f := range l.Fragments {
		if matchesTerminus(f.Terminus, c.Termini) {
			filtered = append(filtered, f)
		}
	}
	l.Fragments = filtered
}

func matchesTerminus(term core.Terminus, termini []core.Terminus) bool {
	for _, t := range termini {
		if t == term {
			return true
		}
	}
	return false
}

// filterByMass removes fragments outside the mass window
func (c *Config) filterByMass(l *core.Ladder) {
	var filtered []core.Fragment
	for _, f := range l.Fragments {
		m := f.Mass(c.Kind)
		if c.MinMass > 0 && m < c.MinMass {
			continue
		}
		if c.MaxMass > 0 && m > c.MaxMass {
			continue
		}
		filtered = append(filtered, f)
	}
	l.Fragments = filtered
}

// filterTopN keeps only the N heaviest fragments
func (c *Config) filterTopN(l *core.Ladder) {
	if len(l.Fragments) <= c.TopN {
		return
	}

	// Create a copy and sort by mass descending
	fragments := make([]core.Fragment, len(l.Fragments))
	copy(fragments, l.Fragments)

	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].Mass(c.Kind) > fragments[j].Mass(c.Kind)
	})

	// Keep only top N
	l.Fragments = fragments[:c.TopN]
}

// sortLadder restores ladder order: by index, N before C
func sortLadder(l *core.Ladder) {
	sort.SliceStable(l.Fragments, func(i, j int) bool {
		a, b := l.Fragments[i], l.Fragments[j]
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.Terminus < b.Terminus
	})
}

// RemoveEmptyFragments removes the zero-length fragments at either end of the ladder
func RemoveEmptyFragments(l *core.Ladder) {
	var filtered []core.Fragment
	for _, f := range l.Fragments {
		if f.Residues != "" {
			filtered = append(filtered, f)
		}
	}
	l.Fragments = filtered
}
