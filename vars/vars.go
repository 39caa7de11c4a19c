package vars

import (
	"errors"
	"sort"

	"golang.org/x/text/cases"
)

// ErrFrozen is returned when a Builder is used after Freeze.
var ErrFrozen = errors.New("vars builder is already frozen")

type entry struct {
	key   string
	value string
}

// fold returns the case-insensitive lookup form of key.
// A Caser holds transform state so one is created per call.
func fold(key string) string {
	return cases.Fold().String(key)
}

// Builder accumulates variables with case-insensitive keys.
// Once Freeze is called the builder rejects further writes.
type Builder struct {
	entries map[string]entry
	frozen  bool
}

// NewBuilder creates an empty case-insensitive builder.
func NewBuilder() *Builder {
	return &Builder{entries: map[string]entry{}}
}

// Set records value for key, replacing any entry that differs only in case.
func (b *Builder) Set(key, value string) error {
	if b.frozen {
		return ErrFrozen
	}
	b.entries[fold(key)] = entry{key: key, value: value}
	return nil
}

// SetAll records every pair of m. Keys are applied in sorted order so that
// case variants resolve deterministically, the lexically last one winning.
func (b *Builder) SetAll(m map[string]string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := b.Set(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// Len reports the number of distinct keys recorded so far.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Freeze returns an immutable snapshot and locks the builder.
func (b *Builder) Freeze() (*Store, error) {
	if b.frozen {
		return nil, ErrFrozen
	}
	b.frozen = true

	entries := b.entries
	b.entries = nil
	return &Store{entries: entries}, nil
}

// Store is an immutable, case-insensitive variable table.
type Store struct {
	entries map[string]entry
}

// Empty returns a store without variables.
func Empty() *Store {
	return &Store{entries: map[string]entry{}}
}

// FromMap builds a frozen store from m in one step.
func FromMap(m map[string]string) *Store {
	b := NewBuilder()
	// A fresh builder cannot be frozen yet.
	_ = b.SetAll(m)
	s, _ := b.Freeze()
	return s
}

// Get looks key up ignoring case.
func (s *Store) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	e, ok := s.entries[fold(key)]
	return e.value, ok
}

// GetOr returns the value for key or def when absent.
func (s *Store) GetOr(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Len returns the number of variables.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// CaseInsensitive always reports true; a Store can only be built with folded keys.
func (s *Store) CaseInsensitive() bool {
	return true
}

// Keys returns the keys in their original casing, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, s.Len())
	if s == nil {
		return keys
	}
	for _, e := range s.entries {
		keys = append(keys, e.key)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the variables keyed by their original casing.
func (s *Store) Map() map[string]string {
	m := make(map[string]string, s.Len())
	if s == nil {
		return m
	}
	for _, e := range s.entries {
		m[e.key] = e.value
	}
	return m
}
