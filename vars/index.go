package vars

import "sort"

// Index is an immutable mapping from a key to an ordered list of strings,
// used for auxiliary lookup tables such as service discovery.
type Index struct {
	entries map[string][]string
}

// EmptyIndex returns an index without entries.
func EmptyIndex() *Index {
	return &Index{entries: map[string][]string{}}
}

// NewIndex deep copies m into an immutable index.
func NewIndex(m map[string][]string) *Index {
	entries := make(map[string][]string, len(m))
	for k, v := range m {
		entries[k] = append(make([]string, 0, len(v)), v...)
	}
	return &Index{entries: entries}
}

// Get returns a copy of the list stored for key.
// Unknown keys yield an empty, non-nil slice.
func (i *Index) Get(key string) []string {
	if i == nil {
		return []string{}
	}
	v, ok := i.entries[key]
	if !ok {
		return []string{}
	}
	return append(make([]string, 0, len(v)), v...)
}

func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.entries)
}

func (i *Index) Keys() []string {
	keys := make([]string, 0, i.Len())
	if i == nil {
		return keys
	}
	for k := range i.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
