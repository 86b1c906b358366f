package render

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfDate marks a recoverable surface invalidation.
	ErrOutOfDate = errors.New("render: surface out of date")
	// ErrSurfaceLost marks an unrecoverable surface or device failure.
	ErrSurfaceLost = errors.New("render: surface lost")
	// ErrNotRecorded is returned when presenting an image with no recorded commands.
	ErrNotRecorded = errors.New("render: no commands recorded for image")
)

// FrameError is a fatal rendering failure with the context needed for a
// postmortem. Image is -1 when no image was involved.
type FrameError struct {
	Op    string
	Image int
	Err   error
}

func (e *FrameError) Error() string {
	if e.Image < 0 {
		return fmt.Sprintf("render: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("render: %s (image %d): %v", e.Op, e.Image, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
