package upload

import (
	"errors"
	"fmt"
)

var (
	ErrOwnerNotFound = errors.New("owner not found")
	ErrTooLarge      = errors.New("upload too large")
)

type Phase string

const (
	PhaseOriginal  Phase = "original"
	PhaseThumbnail Phase = "thumbnail"
)

// UploadFailedError reports a storage backend failure and the phase it
// happened in. Earlier phases are left in place.
type UploadFailedError struct {
	Phase    Phase
	FileName string
	Key      string
	Err      error
}

func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("upload %s of %q as %s: %v", e.Phase, e.FileName, e.Key, e.Err)
}

func (e *UploadFailedError) Unwrap() error {
	return e.Err
}
