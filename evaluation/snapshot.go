package evaluation

import (
	"sync"
	"sync/atomic"
)

// SnapshotStore holds the current ConfigModel behind an atomic pointer.
// Reads never block and never observe a model mixing fields from two
// documents: models are immutable and replaced wholesale, never mutated
// in place. Publishes are serialized against each other so the sequence
// guard cannot race.
type SnapshotStore struct {
	current   atomic.Pointer[ConfigModel]
	publishMu sync.Mutex
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Current returns the most recently published model, or
// ErrNotInitialized before the first successful publish.
func (s *SnapshotStore) Current() (*ConfigModel, error) {
	model := s.current.Load()
	if model == nil {
		return nil, ErrNotInitialized
	}
	return model, nil
}

func (s *SnapshotStore) HasConfig() bool {
	return s.current.Load() != nil
}

// Publish atomically replaces the visible snapshot. A document whose
// sequence number is lower than the published one is rejected with
// ErrStaleSequence; the last good snapshot stays authoritative. Equal
// sequence numbers are accepted (last writer wins) so a re-fetch of the
// same document is not an error.
func (s *SnapshotStore) Publish(model *ConfigModel) error {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if published := s.current.Load(); published != nil &&
		model.SequenceNumber() < published.SequenceNumber() {
		return ErrStaleSequence
	}
	s.current.Store(model)
	return nil
}
