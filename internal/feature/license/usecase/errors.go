// Package usecase implements the business logic for the license feature.
package usecase

import "errors"

var (
	// ErrNoCroppedImage is returned when extraction is requested before a
	// document has been detected for the session.
	ErrNoCroppedImage = errors.New("no cropped document for session")

	// ErrLicenseNotFound is returned when no registry record matches the
	// confirmed fields.
	ErrLicenseNotFound = errors.New("license not found")

	// ErrLicenseAlreadyExists is returned when registering a license whose
	// dl_number is already present in the registry.
	ErrLicenseAlreadyExists = errors.New("license already exists in database")
)
