package config

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeKey folds case and drops '_' and '-' so that "Doc_Root",
// "docroot" and "doc-root" address the same variable.
func NormalizeKey(key string) string {
	folded := cases.Fold().String(key)
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return -1
		}
		return r
	}, folded)
}

// Vars is a style-insensitive variable table. Names bound from the command
// line are pinned and cannot be rebound by the project file.
type Vars struct {
	values map[string]string
	names  map[string]string
	pinned map[string]bool
}

func newVars() Vars {
	return Vars{
		values: map[string]string{},
		names:  map[string]string{},
		pinned: map[string]bool{},
	}
}

// Get returns the value bound to name.
func (v Vars) Get(name string) (string, bool) {
	val, ok := v.values[NormalizeKey(name)]
	return val, ok
}

// Len returns the number of bound variables.
func (v Vars) Len() int { return len(v.values) }

// Map returns a copy keyed by the spelling used at first binding.
func (v Vars) Map() map[string]string {
	out := make(map[string]string, len(v.values))
	for k, val := range v.values {
		out[v.names[k]] = val
	}
	return out
}

// MarshalYAML renders the table keyed by first-seen spellings.
func (v Vars) MarshalYAML() (any, error) {
	return v.Map(), nil
}

func (v *Vars) set(name, value string) {
	k := NormalizeKey(name)
	if v.pinned[k] {
		return
	}
	if _, ok := v.names[k]; !ok {
		v.names[k] = name
	}
	v.values[k] = value
}

func (v *Vars) pin(name, value string) {
	k := NormalizeKey(name)
	delete(v.pinned, k)
	v.set(name, value)
	v.pinned[k] = true
}

// Expand substitutes $name and ${name} references against the variables
// bound so far. "$$" yields a literal '$'. References to unbound names are
// left verbatim so a forward reference never resolves to a later binding.
func (v Vars) Expand(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		next := s[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteByte('$')
				continue
			}
			name := s[i+2 : i+2+end]
			if val, ok := v.Get(name); ok && name != "" {
				b.WriteString(val)
			} else {
				b.WriteString(s[i : i+3+end])
			}
			i += 2 + end
		case isIdentStart(next):
			j := i + 1
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
			name := s[i+1 : j]
			if val, ok := v.Get(name); ok {
				b.WriteString(val)
			} else {
				b.WriteString(s[i:j])
			}
			i = j - 1
		default:
			b.WriteByte('$')
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
