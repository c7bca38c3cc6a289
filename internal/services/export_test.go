package services

// Tracked reports how many owners currently hold cache bookkeeping.
func (s *CachedTaskService) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owners)
}
