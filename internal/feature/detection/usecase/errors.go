// Package usecase implements the business logic for the detection feature.
package usecase

import "errors"

var (
	// ErrLowConfidence is returned when no document is found in the image, or
	// the best candidate falls below the confidence threshold.
	ErrLowConfidence = errors.New("low confidence")

	// ErrUnsupportedFile is returned when the uploaded file is not a supported
	// image type (png, jpg, jpeg).
	ErrUnsupportedFile = errors.New("unsupported file type")
)
