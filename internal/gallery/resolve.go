package gallery

import (
	"context"
	"fmt"
)

// Uploader stores a staged file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file *File, destPath string) (string, error)
}

// ManifestEntry is one photo descriptor of the final ordered manifest.
// RemoteID is nil for photos uploaded this session that never existed before.
type ManifestEntry struct {
	RemoteID *int64 `json:"id,omitempty"`
	URL      string `json:"url"`
	OrderNum int    `json:"order_num"`
	Caption  string `json:"caption,omitempty"`
	Visible  bool   `json:"is_visible"`
}

// Resolution is the outcome of resolving an edit session at submit time.
type Resolution struct {
	Manifest  []ManifestEntry
	DeleteIDs []int64
}

// Resolve turns the current slot state into the final photo manifest,
// uploading staged files as it goes.
//
// Uploads run strictly sequentially in display order, so order numbers are
// dense (main fixed at 1, subs at 2..N) and deterministic regardless of
// network latency. The first upload failure aborts the whole resolution and
// leaves the slot collection untouched so the caller can retry.
func (e *Editor) Resolve(ctx context.Context, up Uploader, pathPrefix string) (*Resolution, error) {
	if e.main == nil {
		return nil, ErrMainPhotoRequired
	}
	if e.main.pending == nil && e.main.persisted == nil {
		return nil, ErrMainPhotoRequired
	}

	manifest := make([]ManifestEntry, 0, 1+len(e.subs))
	order := 1

	entry, err := resolveSlot(ctx, up, e.main, fmt.Sprintf("%s/main", pathPrefix), order)
	if err != nil {
		return nil, err
	}
	manifest = append(manifest, entry)
	order++

	for _, slot := range e.subs {
		entry, err := resolveSlot(ctx, up, slot, fmt.Sprintf("%s/sub_%d", pathPrefix, order), order)
		if err != nil {
			return nil, err
		}
		manifest = append(manifest, entry)
		order++
	}

	return &Resolution{
		Manifest:  manifest,
		DeleteIDs: e.DeletedIDs(),
	}, nil
}

func resolveSlot(ctx context.Context, up Uploader, slot *Slot, destPath string, order int) (ManifestEntry, error) {
	entry := ManifestEntry{
		OrderNum: order,
		Caption:  slot.caption,
		Visible:  slot.visible,
	}
	if id, ok := slot.RemoteID(); ok {
		remoteID := id
		entry.RemoteID = &remoteID
	}

	if slot.pending != nil {
		url, err := up.Upload(ctx, slot.pending, destPath)
		if err != nil {
			return ManifestEntry{}, fmt.Errorf("upload photo at position %d: %w", order, err)
		}
		entry.URL = url
		return entry, nil
	}

	entry.URL = slot.persisted.URL
	return entry, nil
}
