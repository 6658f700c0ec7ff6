package querycache

import "strings"

// Key is a hierarchical cache key: a stable domain prefix followed by view
// and identifier segments, e.g. {"ehr","patients","detail",id}. Keys
// compare by value, so invalidation-by-prefix is a prefix match over the
// key space rather than anything tied to a particular cache library.
type Key []string

// NewKey builds a key from segments.
func NewKey(segments ...string) Key {
	return Key(segments)
}

// Child returns a new key with extra segments appended.
func (k Key) Child(segments ...string) Key {
	out := make(Key, 0, len(k)+len(segments))
	out = append(out, k...)
	out = append(out, segments...)
	return out
}

// String joins the segments into the canonical flat form.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether k starts with the given prefix key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, seg := range prefix {
		if k[i] != seg {
			return false
		}
	}
	return true
}

// splitFlat recovers key segments from the canonical flat form.
func splitFlat(flat string) []string {
	return strings.Split(flat, "/")
}

// metricPrefix is the low-cardinality label used for cache metrics: the
// first two segments of the key.
func (k Key) metricPrefix() string {
	if len(k) <= 2 {
		return k.String()
	}
	return Key(k[:2]).String()
}
