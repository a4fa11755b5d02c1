package scenario

import "sync/atomic"

// Sequencer stamps requests with strictly increasing numbers. A response is
// applied only if its stamp is still the latest one issued. Stamps are not a
// request count: Supersede advances them without a request.
type Sequencer struct {
	latest atomic.Uint64
}

// Issue returns a new stamp, greater than every previous one.
func (s *Sequencer) Issue() uint64 {
	return s.latest.Add(1)
}

// Supersede invalidates every stamp issued so far without starting a
// request.
func (s *Sequencer) Supersede() {
	s.latest.Add(1)
}

// IsLatest reports whether stamp is the most recently issued.
func (s *Sequencer) IsLatest(stamp uint64) bool {
	return stamp != 0 && s.latest.Load() == stamp
}

// Latest returns the last issued stamp, or 0 if none.
func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}
