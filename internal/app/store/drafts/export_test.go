package draftstore

// LockEntries reports how many per-session locks are tracked.
func (s *Store) LockEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
