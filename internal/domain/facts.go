package domain

import (
	"maps"
	"slices"
)

const MaxFacts = 10

// Facts maps an English key ("birthday", "favoriteColor") to the value the
// user disclosed.
type Facts map[string]string

func (f Facts) Clone() Facts {
	if f == nil {
		return Facts{}
	}
	return maps.Clone(f)
}

// Accepts reports whether key can be written without exceeding MaxFacts.
// Overwriting an existing key is always accepted.
func (f Facts) Accepts(key string) bool {
	if _, ok := f[key]; ok {
		return true
	}
	return len(f) < MaxFacts
}

func (f Facts) Keys() []string {
	return slices.Sorted(maps.Keys(f))
}
