package gallery

import "errors"

var (
	ErrCapacityExceeded  = errors.New("sub photo limit reached")
	ErrMainPhotoRequired = errors.New("main photo required")
	ErrSlotNotFound      = errors.New("photo slot not found")
	ErrBadIndex          = errors.New("reorder index out of range")
)

// MaxSubPhotos is the hard cap on sub photo slots per hall.
const MaxSubPhotos = 9
