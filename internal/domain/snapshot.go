package domain

import (
	"time"
)

// RejectedEntry is a malformed entry left out of a snapshot.
type RejectedEntry struct {
	Err     error
	EntryID string
}

// Snapshot is an immutable view of the entry store and the client directory.
// Derivations never mutate it; a refresh always produces a new snapshot.
type Snapshot struct {
	fetchedAt time.Time
	byID      map[string]*Entry
	clients   map[string]Client
	entries   []*Entry
	version   uint64
}

// NewSnapshot copies entries and clients into a snapshot. Entries failing
// validation, and duplicates of an id already seen, are excluded and reported.
func NewSnapshot(version uint64, fetchedAt time.Time, entries []*Entry, clients []Client) (*Snapshot, []RejectedEntry) {
	s := &Snapshot{
		version:   version,
		fetchedAt: fetchedAt,
		byID:      make(map[string]*Entry, len(entries)),
		clients:   make(map[string]Client, len(clients)),
		entries:   make([]*Entry, 0, len(entries)),
	}

	for _, c := range clients {
		s.clients[c.ID] = c
	}

	var rejected []RejectedEntry
	for _, e := range entries {
		if e == nil {
			continue
		}

		if e.ID == "" {
			rejected = append(rejected, RejectedEntry{Err: ErrMissingEntryID})
			continue
		}

		if _, dup := s.byID[e.ID]; dup {
			rejected = append(rejected, RejectedEntry{EntryID: e.ID, Err: ErrDuplicateEntry})
			continue
		}

		if err := e.Validate(); err != nil {
			rejected = append(rejected, RejectedEntry{EntryID: e.ID, Err: err})
			continue
		}

		c := e.Clone()
		c.DueDate = Date(c.DueDate)
		s.entries = append(s.entries, c)
		s.byID[c.ID] = c
	}

	return s, rejected
}

// Version is the fetch sequence stamp the snapshot was built from.
func (s *Snapshot) Version() uint64 { return s.version }

// FetchedAt is when the underlying data was read.
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// Len returns the number of valid entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Entries returns copies of all entries in fetch order.
func (s *Snapshot) Entries() []*Entry {
	out := make([]*Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// Entry returns a copy of the entry with the given id.
func (s *Snapshot) Entry(id string) (*Entry, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// ClientName resolves a client id to its display name.
func (s *Snapshot) ClientName(id string) string {
	if s == nil || id == "" {
		return ""
	}
	return s.clients[id].DisplayName
}

// each visits the stored entries without copying. Callers must not mutate them.
func (s *Snapshot) each(fn func(e *Entry)) {
	if s == nil {
		return
	}
	for _, e := range s.entries {
		fn(e)
	}
}
