package messages

import (
	amessages "github.com/airenas/async-api/pkg/messages"
)

const (
	st = "DUBBER/"
	// Work queue name for transcription jobs
	Work = st + "Work"
	// StatusChange queue name
	StatusChange = st + "StatusChange"
	// Inform queue name
	Inform = st + "Inform"
)

const (
	// KindUpload marks a status event of an audio upload
	KindUpload = "upload"
	// KindDubbing marks a status event of a dubbing
	KindDubbing = "dubbing"
)

// TranscribeMessage starts transcription for one upload
type TranscribeMessage struct {
	amessages.QueueMessage
	AudioURL string `json:"audioUrl,omitempty"`
}

// StatusMessage notifies about an upload or dubbing state change
type StatusMessage struct {
	amessages.QueueMessage
	Kind string `json:"kind,omitempty"`
}
