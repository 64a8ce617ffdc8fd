package sets

// Set is a simple generic hash set for comparable keys.
// Usage: s := sets.New[string]("a","b"); s.Add("c"); if s.Has("b") {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// AppendUnique appends the values of add that are not yet in dst, keeping
// first-seen order. Used for file lists whose order drives command enumeration.
func AppendUnique[T comparable](dst []T, add ...T) []T {
	seen := New(dst...)
	for _, v := range add {
		if seen.Has(v) {
			continue
		}
		seen.Add(v)
		dst = append(dst, v)
	}
	return dst
}
