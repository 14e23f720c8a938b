package pipeline

import (
	"context"
	"database/sql"
	"io"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/persistence"
	"github.com/airenas/dubber/internal/pkg/status"
)

// DB provides persistence for uploads and dubbings
type DB interface {
	LoadUpload(ctx context.Context, id string) (*persistence.AudioUpload, error)
	UpdateTranscription(ctx context.Context, id, text string) error
	UpdateUploadStatus(ctx context.Context, id string, st status.Status) error
	InsertDubbing(ctx context.Context, item *persistence.Dubbing) error
	UpdateDubbing(ctx context.Context, id string, st status.Status, url sql.NullString) error
}

// FileSaver stores dubbed audio and exposes its public URL
type FileSaver interface {
	SaveFile(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	PublicURL(name string) string
}

// Recognizer provides speech to text
type Recognizer interface {
	Recognize(ctx context.Context, fileName string, r io.Reader) (string, error)
}

// Translator provides text translation
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Synthesizer provides text to speech
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// AudioLoader downloads audio bytes by URL
type AudioLoader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// MsgSender provides send msg functionality
type MsgSender interface {
	SendMessage(context.Context, amessages.Message, string) error
}

// ServiceData keeps data required for pipeline work
type ServiceData struct {
	Port        int
	DB          DB
	Saver       FileSaver
	Loader      AudioLoader
	Recognizer  Recognizer
	Translator  Translator
	Synthesizer Synthesizer
	MsgSender   MsgSender
}
