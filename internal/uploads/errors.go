package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

var (
	// ErrNoFile indicates the multipart field was absent or the transfer failed.
	ErrNoFile = errors.New("no file uploaded or upload error occurred")
	// ErrInvalidType indicates a MIME type outside the video/image allow-lists.
	ErrInvalidType = errors.New("invalid file type, only video and image files are allowed")
	// ErrFileTooLarge indicates the file exceeds the cap for its kind.
	ErrFileTooLarge = errors.New("file too large")
	// ErrStorageWrite indicates the validated file could not be persisted.
	ErrStorageWrite = errors.New("failed to store uploaded file")
)

// MapFormError converts a transport-level multipart failure into an ErrNoFile
// variant carrying a human-readable cause.
func MapFormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, http.ErrMissingFile):
		return fmt.Errorf("%w: missing file field", ErrNoFile)
	case errors.Is(err, multipart.ErrMessageTooLarge):
		return fmt.Errorf("%w: request body exceeds the allowed size", ErrNoFile)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: file was only partially transferred", ErrNoFile)
	default:
		return fmt.Errorf("%w: %v", ErrNoFile, err)
	}
}
