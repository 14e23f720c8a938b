package api

const (
	// PrmFile is the form parameter carrying audio
	PrmFile = "file"
	// PrmEmail is an optional inform email form parameter
	PrmEmail = "email"
	// PrmDuration is an optional audio duration (seconds) form parameter
	PrmDuration = "duration"
)
