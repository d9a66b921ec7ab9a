package services

import "errors"

var (
	// ErrWrongPassword means the current password given for a change did
	// not match.
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrUnsupportedImage means an avatar upload asked for a content type
	// other than a PNG, JPEG, GIF or WebP image.
	ErrUnsupportedImage = errors.New("unsupported image type")
)
