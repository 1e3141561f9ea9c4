package gallery

import "sort"

// Editor tracks the photo slots of one hall gallery edit session: a single
// optional main slot plus an ordered list of sub slots, and the set of
// persisted photo ids removed during the session.
//
// All operations are synchronous and all-or-nothing: a rejected operation
// leaves the collection untouched. The editor is not safe for concurrent use;
// each edit session owns its editor exclusively.
type Editor struct {
	main    *Slot
	subs    []*Slot
	deleted map[int64]struct{}
}

// NewEditor creates an empty editor with an empty deletion set.
func NewEditor() *Editor {
	return &Editor{deleted: make(map[int64]struct{})}
}

// SeedPhoto is one entry of a previously persisted photo manifest.
type SeedPhoto struct {
	RemoteID int64
	URL      string
	OrderNum int
	Caption  string
	Visible  bool
}

// Seed loads the persisted manifest into the editor. The entry with order 1
// becomes the main slot; the rest become sub slots in manifest order.
func (e *Editor) Seed(photos []SeedPhoto) {
	sorted := make([]SeedPhoto, len(photos))
	copy(sorted, photos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrderNum < sorted[j].OrderNum })

	for _, p := range sorted {
		slot := newSlot()
		slot.caption = p.Caption
		slot.visible = p.Visible
		slot.persisted = &Persisted{RemoteID: p.RemoteID, URL: p.URL}

		if p.OrderNum == 1 && e.main == nil {
			e.main = slot
			continue
		}
		e.subs = append(e.subs, slot)
	}
}

// SetMainPhoto attaches a staged file to the main slot, creating the slot if
// none exists. A previously staged file is released before being replaced. A
// persisted main photo is not deleted: its id is carried forward as history
// and superseded by the new upload.
func (e *Editor) SetMainPhoto(f *File) *Slot {
	if e.main == nil {
		e.main = newSlot()
	}
	if e.main.pending != nil {
		e.main.pending.Release()
	}
	e.main.pending = f
	return e.main
}

// ClearMainPhotoFile detaches a staged main photo file, reverting the slot to
// its last persisted state if one exists, otherwise clearing the slot.
func (e *Editor) ClearMainPhotoFile() {
	if e.main == nil {
		return
	}
	if e.main.pending != nil {
		e.main.pending.Release()
		e.main.pending = nil
	}
	if e.main.persisted == nil {
		e.main = nil
	}
}

// RemoveMainPhoto removes the main slot entirely. A staged file is released;
// a persisted photo id is recorded for deletion.
func (e *Editor) RemoveMainPhoto() {
	if e.main == nil {
		return
	}
	if e.main.pending != nil {
		e.main.pending.Release()
	}
	if e.main.persisted != nil {
		e.deleted[e.main.persisted.RemoteID] = struct{}{}
	}
	e.main = nil
}

// AddSubPhotos appends one pending sub slot per staged file, preserving input
// order. Exceeding the sub photo limit rejects the whole batch without
// mutating the collection; ownership of the rejected files stays with the
// caller.
func (e *Editor) AddSubPhotos(files []*File) ([]*Slot, error) {
	if len(e.subs)+len(files) > MaxSubPhotos {
		return nil, ErrCapacityExceeded
	}

	added := make([]*Slot, 0, len(files))
	for _, f := range files {
		slot := newSlot()
		slot.pending = f
		e.subs = append(e.subs, slot)
		added = append(added, slot)
	}
	return added, nil
}

// RemoveSubPhoto removes the sub slot with the given local id. A staged file
// is released; a persisted photo id is recorded for deletion. Other slots keep
// their identity.
func (e *Editor) RemoveSubPhoto(localID string) error {
	for i, slot := range e.subs {
		if slot.localID != localID {
			continue
		}
		if slot.pending != nil {
			slot.pending.Release()
		}
		if slot.persisted != nil {
			e.deleted[slot.persisted.RemoteID] = struct{}{}
		}
		e.subs = append(e.subs[:i], e.subs[i+1:]...)
		return nil
	}
	return ErrSlotNotFound
}

// ReorderSubPhotos moves the sub slot at from to position to, shifting the
// slots in between. Sources and ids are untouched; only positions change.
func (e *Editor) ReorderSubPhotos(from, to int) error {
	if from < 0 || from >= len(e.subs) || to < 0 || to >= len(e.subs) {
		return ErrBadIndex
	}
	if from == to {
		return nil
	}
	slot := e.subs[from]
	e.subs = append(e.subs[:from], e.subs[from+1:]...)
	e.subs = append(e.subs[:to], append([]*Slot{slot}, e.subs[to:]...)...)
	return nil
}

// SetCaption updates the caption of the main or a sub slot.
func (e *Editor) SetCaption(localID, caption string) error {
	slot := e.find(localID)
	if slot == nil {
		return ErrSlotNotFound
	}
	slot.caption = caption
	return nil
}

// SetVisible updates the display flag of the main or a sub slot.
func (e *Editor) SetVisible(localID string, visible bool) error {
	slot := e.find(localID)
	if slot == nil {
		return ErrSlotNotFound
	}
	slot.visible = visible
	return nil
}

func (e *Editor) find(localID string) *Slot {
	if e.main != nil && e.main.localID == localID {
		return e.main
	}
	for _, slot := range e.subs {
		if slot.localID == localID {
			return slot
		}
	}
	return nil
}

// Main returns the main slot, nil if absent.
func (e *Editor) Main() *Slot { return e.main }

// Subs returns the sub slots in display order.
func (e *Editor) Subs() []*Slot {
	out := make([]*Slot, len(e.subs))
	copy(out, e.subs)
	return out
}

// SubCount returns the number of sub slots.
func (e *Editor) SubCount() int { return len(e.subs) }

// DeletedIDs returns the deletion set accumulated this session, deduplicated
// and sorted. The set only grows: re-adding a photo never restores a removed
// id.
func (e *Editor) DeletedIDs() []int64 {
	ids := make([]int64, 0, len(e.deleted))
	for id := range e.deleted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close releases every staged file still pending. Called when the edit session
// ends, whether the submission succeeded or the request was abandoned.
func (e *Editor) Close() {
	if e.main != nil && e.main.pending != nil {
		e.main.pending.Release()
	}
	for _, slot := range e.subs {
		if slot.pending != nil {
			slot.pending.Release()
		}
	}
}
