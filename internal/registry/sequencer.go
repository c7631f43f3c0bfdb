package registry

// sequencer tags outgoing requests per entity id so that a response older
// than the last one applied for the same id can be recognized and dropped.
// It is not safe for concurrent use; registries guard it with their mutex.
type sequencer struct {
	issued  map[int64]uint64
	applied map[int64]uint64
}

func newSequencer() *sequencer {
	return &sequencer{
		issued:  make(map[int64]uint64),
		applied: make(map[int64]uint64),
	}
}

// next returns the tag for a new request on id.
func (s *sequencer) next(id int64) uint64 {
	s.issued[id]++
	return s.issued[id]
}

// accept reports whether the response tagged seq is newer than everything
// applied so far for id, and records it if so.
func (s *sequencer) accept(id int64, seq uint64) bool {
	if seq <= s.applied[id] {
		return false
	}
	s.applied[id] = seq
	return true
}

func (s *sequencer) forget(id int64) {
	delete(s.issued, id)
	delete(s.applied, id)
}
