package models

import (
	"sort"
	"sync"
)

// RatingStore owns every persisted collection. All multi-step
// invariants (replace-by-reviewer, given-rating upsert) run inside a
// single method call under one lock, so callers never observe a
// half-applied mutation.
type RatingStore struct {
	mu           sync.RWMutex
	received     map[Identity][]*Rating
	given        map[Identity]*Rating
	reviewerSeen map[Identity]int64
	searchSeen   map[Identity]int64
	meta         map[Identity]*ParticipantMeta
}

func NewRatingStore() *RatingStore {
	return &RatingStore{
		received:     make(map[Identity][]*Rating),
		given:        make(map[Identity]*Rating),
		reviewerSeen: make(map[Identity]int64),
		searchSeen:   make(map[Identity]int64),
		meta:         make(map[Identity]*ParticipantMeta),
	}
}

// AddGivenRating replaces whatever rating the local participant had for
// target with r. One current rating per target, always.
func (s *RatingStore) AddGivenRating(target Identity, r *Rating) {
	if target.IsEmpty() || r == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.given[target] = r
}

// DeleteGivenRating removes the given rating matching the
// (timestamp, driver) tuple. Returns whether a match was found.
func (s *RatingStore) DeleteGivenRating(timestamp int64, driver Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.given[driver]
	if !ok || cur.Timestamp != timestamp {
		return false
	}
	delete(s.given, driver)
	return true
}

// DeleteReceivedRating removes the entry in recipient's received list
// matching the (timestamp, reviewer) tuple. The recipient key is
// dropped once its list empties. Returns whether a match was found.
func (s *RatingStore) DeleteReceivedRating(recipient Identity, timestamp int64, reviewer Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.received[recipient]
	for i, r := range list {
		if r.Timestamp == timestamp && r.Reviewer == reviewer {
			s.received[recipient] = append(list[:i], list[i+1:]...)
			if len(s.received[recipient]) == 0 {
				delete(s.received, recipient)
			}
			return true
		}
	}
	return false
}

// GetReceivedRatings returns the raw received list for id in insertion
// order. Empty slice when none.
func (s *RatingStore) GetReceivedRatings(id Identity) []*Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.received[id]
	out := make([]*Rating, len(list))
	copy(out, list)
	return out
}

// GetAllGivenRatings flattens the given collection newest-first,
// back-filling a missing DriverName from the identity's name portion.
// Entries are copies; mutating them does not touch the store.
func (s *RatingStore) GetAllGivenRatings() []*Rating {
	s.mu.RLock()
	out := make([]*Rating, 0, len(s.given))
	for driver, r := range s.given {
		rc := *r
		if rc.DriverName == "" {
			rc.DriverName = driver.Name()
		}
		out = append(out, &rc)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// UpsertReceived inserts r into recipient's received list, first
// removing any prior entry by the same reviewer. Returns whether a
// prior entry was replaced (the update-vs-new branch point). The
// find/remove/insert sequence is atomic under the store lock.
func (s *RatingStore) UpsertReceived(recipient Identity, r *Rating) bool {
	if recipient.IsEmpty() || r == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	list := s.received[recipient]
	for i, cur := range list {
		if cur.Reviewer == r.Reviewer {
			list = append(list[:i], list[i+1:]...)
			replaced = true
			break
		}
	}
	s.received[recipient] = append(list, r)
	return replaced
}

// StoreReviewerSeen advances the last-interaction timestamp for id.
// Timestamps only move forward per key.
func (s *RatingStore) StoreReviewerSeen(id Identity, ts int64) {
	if id.IsEmpty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts > s.reviewerSeen[id] {
		s.reviewerSeen[id] = ts
	}
}

// StoreSearchSeen advances the last-interaction timestamp for a
// searched/rated identity. Timestamps only move forward per key.
func (s *RatingStore) StoreSearchSeen(id Identity, ts int64) {
	if id.IsEmpty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts > s.searchSeen[id] {
		s.searchSeen[id] = ts
	}
}

// StoreParticipantMeta overwrites the cached profile for id.
// Last write wins.
func (s *RatingStore) StoreParticipantMeta(id Identity, m *ParticipantMeta) {
	if id.IsEmpty() || m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mc := *m
	s.meta[id] = &mc
}

func (s *RatingStore) GetParticipantMeta(id Identity) (*ParticipantMeta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meta[id]
	if !ok {
		return nil, false
	}
	mc := *m
	return &mc, true
}

// KnownParticipant pairs an identity with its most recent interaction
// time across the given, reviewer-seen and search-seen collections.
type KnownParticipant struct {
	Identity Identity
	LastSeen int64
}

// KnownParticipants returns the union of everyone the local participant
// has rated, been rated by, or searched for, most recent first.
func (s *RatingStore) KnownParticipants() []KnownParticipant {
	s.mu.RLock()
	seen := make(map[Identity]int64)
	for driver, r := range s.given {
		if r.Timestamp > seen[driver] {
			seen[driver] = r.Timestamp
		}
	}
	for id, ts := range s.reviewerSeen {
		if ts > seen[id] {
			seen[id] = ts
		}
	}
	for id, ts := range s.searchSeen {
		if ts > seen[id] {
			seen[id] = ts
		}
	}
	s.mu.RUnlock()

	out := make([]KnownParticipant, 0, len(seen))
	for id, ts := range seen {
		out = append(out, KnownParticipant{Identity: id, LastSeen: ts})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastSeen != out[j].LastSeen {
			return out[i].LastSeen > out[j].LastSeen
		}
		return out[i].Identity < out[j].Identity
	})
	return out
}

// StoreCounts summarizes collection sizes for health and metrics.
type StoreCounts struct {
	Received int `json:"received"`
	Given    int `json:"given"`
	Known    int `json:"known"`
	Meta     int `json:"meta"`
}

func (s *RatingStore) Counts() StoreCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	received := 0
	for _, list := range s.received {
		received += len(list)
	}
	return StoreCounts{
		Received: received,
		Given:    len(s.given),
		Known:    len(s.reviewerSeen) + len(s.searchSeen),
		Meta:     len(s.meta),
	}
}

// Snapshot copies the full store state into a persistence envelope.
func (s *RatingStore) Snapshot() *Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &Storage{
		Version:      StorageVersion,
		Received:     make(map[Identity][]*Rating, len(s.received)),
		Given:        make(map[Identity]*Rating, len(s.given)),
		ReviewerSeen: make(map[Identity]int64, len(s.reviewerSeen)),
		SearchSeen:   make(map[Identity]int64, len(s.searchSeen)),
		Meta:         make(map[Identity]*ParticipantMeta, len(s.meta)),
	}
	for id, list := range s.received {
		cp := make([]*Rating, 0, len(list))
		for _, r := range list {
			rc := *r
			cp = append(cp, &rc)
		}
		st.Received[id] = cp
	}
	for id, r := range s.given {
		rc := *r
		st.Given[id] = &rc
	}
	for id, ts := range s.reviewerSeen {
		st.ReviewerSeen[id] = ts
	}
	for id, ts := range s.searchSeen {
		st.SearchSeen[id] = ts
	}
	for id, m := range s.meta {
		mc := *m
		st.Meta[id] = &mc
	}
	return st
}

// Restore replaces the store state from a persistence envelope. Nil
// sub-collections load as empty; the store is usable either way.
func (s *RatingStore) Restore(st *Storage) {
	if st == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.received = make(map[Identity][]*Rating)
	for id, list := range st.Received {
		if len(list) == 0 {
			continue
		}
		cp := make([]*Rating, 0, len(list))
		for _, r := range list {
			if r == nil {
				continue
			}
			cp = append(cp, r)
		}
		if len(cp) > 0 {
			s.received[id] = cp
		}
	}
	s.given = make(map[Identity]*Rating)
	for id, r := range st.Given {
		if r != nil {
			s.given[id] = r
		}
	}
	s.reviewerSeen = make(map[Identity]int64, len(st.ReviewerSeen))
	for id, ts := range st.ReviewerSeen {
		s.reviewerSeen[id] = ts
	}
	s.searchSeen = make(map[Identity]int64, len(st.SearchSeen))
	for id, ts := range st.SearchSeen {
		s.searchSeen[id] = ts
	}
	s.meta = make(map[Identity]*ParticipantMeta)
	for id, m := range st.Meta {
		if m != nil {
			s.meta[id] = m
		}
	}
}
