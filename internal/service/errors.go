package service

import (
	"errors"
	"strings"
)

var (
	// ErrMissingIdentifiers indicates a required task or submission id is absent.
	ErrMissingIdentifiers = errors.New("missing required identifiers")
	// ErrSubmissionNotFound indicates the submission cannot be located.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrTaskNotFound indicates the task cannot be located.
	ErrTaskNotFound = errors.New("task not found")
	// ErrForbidden indicates the caller may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrReasonerUnavailable indicates no reasoning provider is configured.
	ErrReasonerUnavailable = errors.New("reasoning service not configured")
	// ErrInvalidGeofence indicates a partial or non-positive geofence.
	ErrInvalidGeofence = errors.New("geofence requires latitude, longitude and a positive radius")
	// ErrInvalidLocation indicates only one of lat/lng was supplied.
	ErrInvalidLocation = errors.New("lat and lng must be provided together")
	// ErrInvalidPhoto indicates a photo is neither an image data URI nor an https URL.
	ErrInvalidPhoto = errors.New("photos must be image data URIs or https URLs")
)

func isReviewer(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	return role == "teacher" || role == "admin"
}
