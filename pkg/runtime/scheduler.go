package runtime

import "sync"

// scheduler coalesces dirty component instances into batches. At most one
// batch is in flight at a time; instances dirtied while a batch commits are
// deferred into the following batch.
type scheduler struct {
	mu          sync.Mutex
	queue       []*Instance
	queued      map[uint64]struct{}
	deferred    []*Instance
	deferredSet map[uint64]struct{}
	inFlight    bool

	// notify coalesces wakeups for the optional Run loop.
	notify chan struct{}
}

func newScheduler() *scheduler {
	return &scheduler{
		queued:      make(map[uint64]struct{}),
		deferredSet: make(map[uint64]struct{}),
		notify:      make(chan struct{}, 1),
	}
}

// enqueue adds an instance to the current queue, or to the deferred queue
// when a batch is mid-commit. Duplicate enqueues collapse.
func (s *scheduler) enqueue(in *Instance) {
	s.mu.Lock()
	if s.inFlight {
		if _, ok := s.deferredSet[in.listenerID]; !ok {
			s.deferredSet[in.listenerID] = struct{}{}
			s.deferred = append(s.deferred, in)
		}
	} else {
		if _, ok := s.queued[in.listenerID]; !ok {
			s.queued[in.listenerID] = struct{}{}
			s.queue = append(s.queue, in)
		}
	}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// begin claims the queued instances as one batch. It returns a nil batch
// when nothing is dirty, and ErrBatchInFlight when another batch is still
// committing.
func (s *scheduler) begin() ([]*Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return nil, ErrBatchInFlight
	}
	if len(s.queue) == 0 {
		return nil, nil
	}
	batch := s.queue
	s.queue = nil
	s.queued = make(map[uint64]struct{})
	s.inFlight = true
	return batch, nil
}

// finish closes the in-flight batch and promotes deferred instances into
// the next queue.
func (s *scheduler) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	for _, in := range s.deferred {
		if _, ok := s.queued[in.listenerID]; !ok {
			s.queued[in.listenerID] = struct{}{}
			s.queue = append(s.queue, in)
		}
	}
	s.deferred = nil
	s.deferredSet = make(map[uint64]struct{})
}

// pending reports the number of instances waiting for the next batch.
func (s *scheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) + len(s.deferred)
}
