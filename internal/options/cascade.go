// Package options builds cascading categorical filter option lists and
// keeps the active selection consistent when upstream levels change.
package options

import (
	"sort"
	"strings"

	"github.com/opsboard/opsboard/pkg/field"
)

// All is the unconstrained sentinel for a filter level.
const All = "All"

// Level defines one cascading filter level: a name and a value
// extractor over the dashboard's row type.
type Level[R any] struct {
	Name  string
	Value func(R) string
}

// Selection maps level name to the selected value, or All.
type Selection map[string]string

// Get returns the selection for a level, defaulting to All.
func (s Selection) Get(level string) string {
	if s == nil {
		return All
	}
	if v, ok := s[level]; ok && v != "" {
		return v
	}
	return All
}

// Cascade holds an ordered set of filter levels. The order is fixed:
// each level's option list is restricted by the selections of all
// levels before it.
type Cascade[R any] struct {
	levels []Level[R]
}

// New creates a Cascade over the given levels, in cascading order.
func New[R any](levels ...Level[R]) *Cascade[R] {
	return &Cascade[R]{levels: levels}
}

// Match reports whether value satisfies the selection: All admits
// everything, otherwise comparison is trimmed and case-insensitive.
// A missing value never matches a concrete selection.
func Match(value, selected string) bool {
	if selected == All {
		return true
	}
	v := field.Norm(value)
	if v == "" {
		return false
	}
	return v == field.Norm(selected)
}

// Options returns the deduplicated, trimmed, alphabetically sorted
// distinct values for the named level, restricted to rows matching all
// higher-level selections. With no rows loaded the list is empty.
func (c *Cascade[R]) Options(rows []R, sel Selection, level string) []string {
	idx := c.levelIndex(level)
	if idx < 0 {
		return nil
	}

	seen := make(map[string]string)
	for _, row := range rows {
		if !c.matchesAbove(row, sel, idx) {
			continue
		}
		raw := strings.TrimSpace(c.levels[idx].Value(row))
		if raw == "" {
			continue
		}
		norm := field.Norm(raw)
		if _, ok := seen[norm]; !ok {
			seen[norm] = raw
		}
	}

	out := make([]string, 0, len(seen))
	for _, display := range seen {
		out = append(out, display)
	}
	sort.Slice(out, func(i, j int) bool {
		return field.Norm(out[i]) < field.Norm(out[j])
	})
	return out
}

// Normalize returns a selection where any level whose selected value is
// no longer present in its own option list resets to All along with
// every dependent level below it.
func (c *Cascade[R]) Normalize(rows []R, sel Selection) Selection {
	out := make(Selection, len(c.levels))
	for _, lv := range c.levels {
		out[lv.Name] = All
	}

	for i, lv := range c.levels {
		selected := sel.Get(lv.Name)
		if selected == All {
			continue
		}
		if !containsNorm(c.Options(rows, out, lv.Name), selected) {
			// This level and everything below stays at All.
			for _, rest := range c.levels[i:] {
				out[rest.Name] = All
			}
			break
		}
		out[lv.Name] = selected
	}

	return out
}

// Filter returns the rows matching every level of the selection.
func (c *Cascade[R]) Filter(rows []R, sel Selection) []R {
	out := make([]R, 0, len(rows))
	for _, row := range rows {
		if c.matchesAbove(row, sel, len(c.levels)) {
			out = append(out, row)
		}
	}
	return out
}

// Broadest reports whether every level of the selection is at All.
func (c *Cascade[R]) Broadest(sel Selection) bool {
	for _, lv := range c.levels {
		if sel.Get(lv.Name) != All {
			return false
		}
	}
	return true
}

func (c *Cascade[R]) levelIndex(name string) int {
	for i, lv := range c.levels {
		if lv.Name == name {
			return i
		}
	}
	return -1
}

func (c *Cascade[R]) matchesAbove(row R, sel Selection, n int) bool {
	for _, lv := range c.levels[:n] {
		if !Match(lv.Value(row), sel.Get(lv.Name)) {
			return false
		}
	}
	return true
}

func containsNorm(values []string, want string) bool {
	for _, v := range values {
		if field.Norm(v) == field.Norm(want) {
			return true
		}
	}
	return false
}
