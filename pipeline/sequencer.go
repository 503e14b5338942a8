package pipeline

import "sync/atomic"

// Sequencer tags render requests with increasing numbers so a caller can drop
// results that a newer request has superseded. Renders themselves are never
// cancelled. The zero value is ready to use.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues the tag for a new request, superseding every earlier one.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// IsLatest reports whether seq is the most recently issued tag.
func (s *Sequencer) IsLatest(seq uint64) bool {
	return s.latest.Load() == seq
}

// Accept runs apply only if seq is still the latest tag.
//
// Returns:
// - False if the result was stale and apply was skipped.
//
// @example
// seq := seqr.Next()
// img, _ := r.RenderFinal(subject, snap, 390)
// seqr.Accept(seq, func() { show(img) })
func (s *Sequencer) Accept(seq uint64, apply func()) bool {
	if !s.IsLatest(seq) {
		return false
	}
	apply()
	return true
}
