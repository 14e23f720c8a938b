package status

//Status represents upload or dubbing processing status
type Status int

const (
	// Uploading - file is on its way to the blob store
	Uploading Status = iota + 1
	// Transcribing - transcription is expected or running
	Transcribing
	// Processing - dubbing pipeline is running
	Processing
	// Completed - final step
	Completed
	// Failed - final step
	Failed
)

var (
	statusName = map[Status]string{Uploading: "uploading", Transcribing: "transcribing",
		Processing: "processing", Completed: "completed", Failed: "failed"}
	nameStatus = map[string]Status{"uploading": Uploading, "transcribing": Transcribing,
		"processing": Processing, "completed": Completed, "failed": Failed}
)

func (st Status) String() string {
	return statusName[st]
}

// From returns status obj from string
func From(st string) Status {
	return nameStatus[st]
}

// IsTerminal returns true if no further automatic transition occurs from st
func IsTerminal(st Status) bool {
	return st == Completed || st == Failed
}
