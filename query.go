package intfbus

// QueryState is the visited set guarding one logical query against
// cycles in the bus graph (siblings, re-entrant buses). A fresh state
// is allocated per top-level query and shared down the traversal; it is
// insert-only and discarded when the query completes.
//
// Objects are keyed by their stable serial numbers rather than
// addresses, so the set stays meaningful regardless of what the runtime
// does with object memory.
type QueryState struct {
	visited map[uint64]struct{}
}

// NewQueryState creates an empty visited set.
func NewQueryState() *QueryState {
	return &QueryState{visited: make(map[uint64]struct{}, 8)}
}

// MarkVisited records serial as visited.
func (s *QueryState) MarkVisited(serial uint64) {
	s.visited[serial] = struct{}{}
}

// Visited reports whether serial was already visited in this query.
func (s *QueryState) Visited(serial uint64) bool {
	_, ok := s.visited[serial]
	return ok
}
