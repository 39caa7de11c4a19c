package common

// ContextKey defines a type for context keys to avoid collisions.
type ContextKey string

func (c ContextKey) String() string {
	return "podenv/" + string(c)
}
