package persistence

import (
	"database/sql"
	"time"
)

type (

	//AudioUpload table
	AudioUpload struct {
		ID                string
		Filename          string
		OriginalAudioURL  string
		TranscriptionText sql.NullString
		Status            string
		FileSizeBytes     sql.NullInt64
		DurationSeconds   sql.NullFloat64
		Email             sql.NullString
		Created           time.Time
	}

	//Dubbing table
	Dubbing struct {
		ID             string
		AudioUploadID  string
		TargetLanguage string
		VoiceID        string
		DubbedAudioURL sql.NullString
		Status         string
		Created        time.Time
	}
)
