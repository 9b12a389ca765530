package errs

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")

	ErrInvalidMediaType = errors.New("unsupported media type")
	ErrFileTooLarge     = errors.New("file too large")

	ErrDecode        = errors.New("image decode failed")
	ErrUnknownFormat = errors.New("unknown output format")

	ErrNotFound  = errors.New("file not found")
	ErrTraversal = errors.New("path traversal rejected")
)
