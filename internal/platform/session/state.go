// Package session stores the verification journey state the backend keeps
// between page loads. The client carries nothing across stages except the
// session cookie; each stage re-derives what it needs from this state.
package session

import "license_backend/internal/api"

// CookieName is the session cookie set on the first request.
const CookieName = "lv_session"

// State is the per-session journey state.
// It accumulates as the user moves Detect -> Extract -> Verify -> Result.
type State struct {
	// CroppedImagePath is the on-disk path of the cropped document image
	// written by the detection stage.
	CroppedImagePath string `json:"cropped_image_path,omitempty"`

	// CroppedImageURL is the public URL of the cropped document image.
	CroppedImageURL string `json:"cropped_image_url,omitempty"`

	// LicenseData holds the fields extracted (and later confirmed) for this
	// session. Nil until extraction has run.
	LicenseData *api.LicenseData `json:"license_data,omitempty"`

	// IsValid reports whether the confirmed valid_till date is unexpired.
	IsValid bool `json:"is_valid"`

	// ExistsInDB reports whether the confirmed fields matched a registry record.
	ExistsInDB bool `json:"exists_in_db"`

	// Verified is set once a verify submission has completed, successfully or
	// not. The result page refuses to render an outcome before this point.
	Verified bool `json:"verified"`

	// Override is set by the admin service after a successful password check.
	// The result page renders a success outcome for an overridden session
	// regardless of the underlying record.
	Override bool `json:"override"`
}
