package dto

// VerifyPhotoRequest is the body of POST /verify-photo.
type VerifyPhotoRequest struct {
	SubmissionID        string   `json:"submission_id"`
	TaskID              string   `json:"task_id"`
	Photos              []string `json:"photos"`
	Lat                 *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng                 *float64 `json:"lng" validate:"omitempty,longitude"`
	TaskDescription     string   `json:"task_description" validate:"max=5000"`
	TaskCategory        string   `json:"task_category" validate:"max=64"`
	TaskLocationLat     *float64 `json:"task_location_lat" validate:"omitempty,latitude"`
	TaskLocationLng     *float64 `json:"task_location_lng" validate:"omitempty,longitude"`
	TaskLocationRadiusM *float64 `json:"task_location_radius_m" validate:"omitempty,gt=0"`
}

// VerifyPhotoResponse is the verification outcome returned to the caller.
type VerifyPhotoResponse struct {
	Score           int      `json:"score"`
	Notes           string   `json:"notes"`
	Flagged         bool     `json:"flagged"`
	LocationValid   bool     `json:"location_valid"`
	ContentMatch    bool     `json:"content_match"`
	FraudIndicators []string `json:"fraud_indicators"`
}

// VerifyPhotoErrorResponse keeps the degraded fields alongside the error message.
type VerifyPhotoErrorResponse struct {
	Error   string `json:"error"`
	Score   int    `json:"score"`
	Flagged bool   `json:"flagged"`
	Notes   string `json:"notes"`
}
