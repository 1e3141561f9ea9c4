package estimate

import "errors"

var (
	// ErrEstimateNotFound is returned when no estimate exists for an id
	ErrEstimateNotFound = errors.New("estimate not found")

	// ErrMainPhotoRequired is returned when a write would leave the hall
	// without a main photo
	ErrMainPhotoRequired = errors.New("main photo required")

	// ErrTooManySubPhotos is returned when a write would exceed the sub
	// photo capacity
	ErrTooManySubPhotos = errors.New("too many sub photos")

	// ErrInvalidPhotoPlan is returned when the photos array references an
	// unknown file part or a photo id that is not on the hall
	ErrInvalidPhotoPlan = errors.New("invalid photo plan")

	// ErrPhotoUploadFailed is returned when uploading a staged photo fails
	ErrPhotoUploadFailed = errors.New("photo upload failed")
)
