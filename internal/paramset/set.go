package paramset

// Set is an ordered, immutable collection of parameter records keyed by
// composite key.
type Set struct {
	keys    []string
	records map[string]Params
}

func newSet() *Set {
	return &Set{records: make(map[string]Params)}
}

func (s *Set) add(key string, p Params) {
	s.keys = append(s.keys, key)
	s.records[key] = p
}

func (s *Set) has(key string) bool {
	_, ok := s.records[key]
	return ok
}

// Keys returns the keys in build order.
func (s *Set) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of records.
func (s *Set) Len() int {
	return len(s.keys)
}

// Get returns a copy of the record stored under key.
func (s *Set) Get(key string) (Params, bool) {
	p, ok := s.records[key]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

// Each calls fn for every record in key order and stops at the first error.
func (s *Set) Each(fn func(key string, p Params) error) error {
	for _, k := range s.keys {
		if err := fn(k, s.records[k].clone()); err != nil {
			return err
		}
	}
	return nil
}

// Collection holds named sets, e.g. one per configured wind set id.
type Collection struct {
	names []string
	sets  map[string]*Set
}

func newCollection() *Collection {
	return &Collection{sets: make(map[string]*Set)}
}

func (c *Collection) add(name string, s *Set) {
	if _, ok := c.sets[name]; !ok {
		c.names = append(c.names, name)
	}
	c.sets[name] = s
}

func (c *Collection) has(name string) bool {
	_, ok := c.sets[name]
	return ok
}

// Names returns the set names in creation order.
func (c *Collection) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Set returns the set registered under name.
func (c *Collection) Set(name string) (*Set, bool) {
	s, ok := c.sets[name]
	return s, ok
}

func (c *Collection) Len() int {
	return len(c.names)
}
