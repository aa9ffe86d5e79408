package stream

import (
	"sync/atomic"
	"time"
)

// Snapshot is one decoded record of the state topic.
type Snapshot struct {
	Value     any       `json:"value"`
	Partition int       `json:"partition"`
	Offset    int64     `json:"offset"`
	Time      time.Time `json:"time"`
}

// State holds the latest Snapshot. One writer publishes whole values; readers never lock.
type State struct {
	p atomic.Pointer[Snapshot]
}

func NewState() *State { return &State{} }

// Load returns the current snapshot and false while none has been installed.
func (s *State) Load() (Snapshot, bool) {
	cur := s.p.Load()
	if cur == nil {
		return Snapshot{}, false
	}
	return *cur, true
}

// Replace installs snap unless the current snapshot comes from a later offset.
func (s *State) Replace(snap Snapshot) bool {
	next := &snap
	for {
		cur := s.p.Load()
		if cur != nil && cur.Partition == snap.Partition && cur.Offset > snap.Offset {
			return false
		}
		if s.p.CompareAndSwap(cur, next) {
			return true
		}
	}
}
