package recent

import "time"

// SetClock replaces the time source used by Add
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
