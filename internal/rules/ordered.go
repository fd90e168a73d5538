package rules

// Entry is one key/value pair of an OrderedMap
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OrderedMap is a string map that remembers declaration order.
// Setting an existing key updates it in place.
type OrderedMap struct {
	entries []Entry
	index   map[string]int
}

// NewOrderedMap builds a map from entries, later duplicates winning
func NewOrderedMap(entries ...Entry) *OrderedMap {
	m := &OrderedMap{}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Set inserts or updates key
func (m *OrderedMap) Set(key, value string) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value for key
func (m *OrderedMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	return m.entries[i].Value, true
}

// Len returns the number of keys
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the pairs in declaration order
func (m *OrderedMap) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
