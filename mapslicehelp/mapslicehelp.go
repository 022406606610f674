package mapslicehelp

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderedMapKeys returns the keys of m, oldest first.
func OrderedMapKeys[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []K {
	l := make([]K, m.Len())
	i := 0
	for p := m.Oldest(); p != nil; p = p.Next() {
		l[i] = p.Key
		i++
	}
	return l
}

func ReverseClone[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}
	l := len(s)
	c := make(S, l)
	for i := 0; i < l; i++ {
		c[l-1-i] = s[i]
	}
	return c
}
