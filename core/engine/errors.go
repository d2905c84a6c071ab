package engine

import "errors"

var (
	// ErrInvalidEdit marks an edit outside its legal bounds. The model is
	// left untouched.
	ErrInvalidEdit = errors.New("edit outside legal bounds")
	// ErrNotFound marks an unknown track or clip id.
	ErrNotFound = errors.New("not found")
	// ErrExportInFlight is returned when an export is requested while one
	// is already running.
	ErrExportInFlight = errors.New("an export is already in progress")
	// ErrEmptyTimeline is returned when there is nothing to export.
	ErrEmptyTimeline = errors.New("timeline is empty")
)
