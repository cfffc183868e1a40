package types

// BoundedSet is an insertion-ordered string set with a fixed capacity.
// Adding beyond capacity evicts the oldest entry first.
type BoundedSet struct {
	Items []string `json:"items"`
	Cap   int      `json:"cap"`
}

// NewBoundedSet returns an empty set with the given capacity.
func NewBoundedSet(capacity int) BoundedSet {
	if capacity <= 0 {
		capacity = 1
	}
	return BoundedSet{Cap: capacity}
}

// Add inserts value unless already present, evicting the oldest entry when
// the set is full. Empty strings are ignored.
func (s *BoundedSet) Add(value string) {
	if value == "" {
		return
	}
	if s.Cap <= 0 {
		s.Cap = 1
	}
	for _, item := range s.Items {
		if item == value {
			return
		}
	}
	if len(s.Items) >= s.Cap {
		s.Items = s.Items[1:]
	}
	s.Items = append(s.Items, value)
}

// AddAll inserts each value in order.
func (s *BoundedSet) AddAll(values []string) {
	for _, v := range values {
		s.Add(v)
	}
}

// Contains reports whether value is in the set.
func (s *BoundedSet) Contains(value string) bool {
	for _, item := range s.Items {
		if item == value {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (s *BoundedSet) Len() int {
	return len(s.Items)
}

// Union returns a new set holding the receiver's entries followed by the
// other set's, subject to the receiver's capacity.
func (s BoundedSet) Union(other BoundedSet) BoundedSet {
	out := NewBoundedSet(s.Cap)
	out.AddAll(s.Items)
	out.AddAll(other.Items)
	return out
}
