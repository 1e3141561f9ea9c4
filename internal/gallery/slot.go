package gallery

import "github.com/google/uuid"

// SourceKind tags what a slot currently resolves to.
type SourceKind int

const (
	// SourcePersisted is a photo already stored server-side.
	SourcePersisted SourceKind = iota
	// SourcePending is a locally staged file not yet uploaded.
	SourcePending
)

// Persisted identifies a photo row that already exists in the database.
type Persisted struct {
	RemoteID int64
	URL      string
}

// Slot is one position in the hall photo gallery being edited.
//
// A slot keeps its last persisted state even while a staged file is attached:
// replacing the main photo file does not delete the old row, it supersedes it,
// and clearing the staged file reverts the slot to that persisted state.
type Slot struct {
	localID string // identity for list operations, never sent to the backend
	caption string
	visible bool

	persisted *Persisted // last persisted state, nil if never stored
	pending   *File      // staged file, nil unless a new upload is attached
}

func newSlot() *Slot {
	return &Slot{
		localID: uuid.New().String(),
		visible: true,
	}
}

// LocalID returns the slot's client-side identifier.
func (s *Slot) LocalID() string { return s.localID }

// Source reports whether the slot currently resolves to a persisted photo or
// a staged file.
func (s *Slot) Source() SourceKind {
	if s.pending != nil {
		return SourcePending
	}
	return SourcePersisted
}

// RemoteID returns the persisted photo id carried by the slot and whether one
// exists. A pending slot that replaced a persisted photo still carries the old
// id forward as history.
func (s *Slot) RemoteID() (int64, bool) {
	if s.persisted == nil {
		return 0, false
	}
	return s.persisted.RemoteID, true
}

// URL returns the stored URL for a persisted slot, empty for pending.
func (s *Slot) URL() string {
	if s.persisted == nil {
		return ""
	}
	return s.persisted.URL
}

// PendingFile returns the staged file, nil if the slot is persisted.
func (s *Slot) PendingFile() *File { return s.pending }

// Caption returns the slot caption.
func (s *Slot) Caption() string { return s.caption }

// Visible returns the display flag.
func (s *Slot) Visible() bool { return s.visible }
