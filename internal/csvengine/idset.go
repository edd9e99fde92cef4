package csvengine

// IdSet is an unordered set of string identifiers emitted by one pass
// and consumed by the next. An empty IdSet is valid and distinct from
// a nil one only in that both behave identically to callers.
type IdSet map[string]struct{}

// NewIdSet builds an IdSet from the given identifiers.
func NewIdSet(ids ...string) IdSet {
	s := make(IdSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Len returns the number of distinct identifiers in the set.
func (s IdSet) Len() int {
	return len(s)
}

// Contains reports whether id is a member of the set.
func (s IdSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new IdSet containing every id from s and other.
func (s IdSet) Union(other IdSet) IdSet {
	out := make(IdSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// collector accumulates distinct non-missing values seen across the
// surviving rows of a pass, per requested return column.
type collector struct {
	columns []string
	present []bool
	sets    []IdSet
}

func newCollector(requested []string, header []string) *collector {
	headerSet := make(map[string]bool, len(header))
	for _, h := range header {
		headerSet[h] = true
	}

	c := &collector{columns: requested}
	for _, col := range requested {
		present := headerSet[col]
		c.present = append(c.present, present)
		if present {
			c.sets = append(c.sets, IdSet{})
		} else {
			c.sets = append(c.sets, nil)
		}
	}
	return c
}

func (c *collector) observe(row Row) {
	for i, col := range c.columns {
		if !c.present[i] {
			continue
		}
		if v, ok := row.Get(col); ok {
			c.sets[i][v] = struct{}{}
		}
	}
}

// results returns one IdSet per originally requested column that was
// present in the file, in request order, followed by empty IdSets
// padded to the end so the result always has len(requested) entries.
func (c *collector) results() []IdSet {
	out := make([]IdSet, 0, len(c.columns))
	missing := 0
	for i := range c.columns {
		if c.present[i] {
			out = append(out, c.sets[i])
		} else {
			missing++
		}
	}
	for i := 0; i < missing; i++ {
		out = append(out, IdSet{})
	}
	return out
}
