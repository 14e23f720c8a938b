package mocks

import (
	"context"
	"database/sql"
	"io"

	"github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/persistence"
	"github.com/airenas/dubber/internal/pkg/status"
	"github.com/stretchr/testify/mock"
)

// Filer is minio mock
type Filer struct{ mock.Mock }

func (m *Filer) SaveFile(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, name, r, size, contentType)
	return args.Error(0)
}

// LoadFile func mock
func (m *Filer) LoadFile(ctx context.Context, fileName string) (io.ReadSeekCloser, error) {
	args := m.Called(ctx, fileName)
	return to[io.ReadSeekCloser](args.Get(0)), args.Error(1)
}

func (m *Filer) Delete(ctx context.Context, fileName string) error {
	args := m.Called(ctx, fileName)
	return args.Error(0)
}

func (m *Filer) PublicURL(name string) string {
	args := m.Called(name)
	return args.String(0)
}

func (m *Filer) ObjectKey(urlStr string) (string, error) {
	args := m.Called(urlStr)
	return args.String(0), args.Error(1)
}

// DB is postgres DB mock
type DB struct{ mock.Mock }

func (m *DB) InsertUpload(ctx context.Context, item *persistence.AudioUpload) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *DB) LoadUpload(ctx context.Context, id string) (*persistence.AudioUpload, error) {
	args := m.Called(ctx, id)
	return to[*persistence.AudioUpload](args.Get(0)), args.Error(1)
}

func (m *DB) LoadUploads(ctx context.Context) ([]*persistence.AudioUpload, error) {
	args := m.Called(ctx)
	return to[[]*persistence.AudioUpload](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateTranscription(ctx context.Context, id, text string) error {
	args := m.Called(ctx, id, text)
	return args.Error(0)
}

func (m *DB) UpdateUploadStatus(ctx context.Context, id string, st status.Status) error {
	args := m.Called(ctx, id, st)
	return args.Error(0)
}

func (m *DB) InsertDubbing(ctx context.Context, item *persistence.Dubbing) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *DB) LoadDubbing(ctx context.Context, id string) (*persistence.Dubbing, error) {
	args := m.Called(ctx, id)
	return to[*persistence.Dubbing](args.Get(0)), args.Error(1)
}

func (m *DB) LoadDubbings(ctx context.Context, uploadID string) ([]*persistence.Dubbing, error) {
	args := m.Called(ctx, uploadID)
	return to[[]*persistence.Dubbing](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateDubbing(ctx context.Context, id string, st status.Status, url sql.NullString) error {
	args := m.Called(ctx, id, st, url)
	return args.Error(0)
}

func (m *DB) LockEmailTable(ctx context.Context, id, msgType string) error {
	args := m.Called(ctx, id, msgType)
	return args.Error(0)
}

func (m *DB) UnLockEmailTable(ctx context.Context, id, msgType string, value *int) error {
	args := m.Called(ctx, id, msgType, value)
	return args.Error(0)
}

// Sender is postgres queue mock
type Sender struct{ mock.Mock }

func (m *Sender) SendMessage(ctx context.Context, msg messages.Message, queue string) error {
	args := m.Called(ctx, msg, queue)
	return args.Error(0)
}

// AudioLoader is audio download mock
type AudioLoader struct{ mock.Mock }

func (m *AudioLoader) Load(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	return to[[]byte](args.Get(0)), args.Error(1)
}

// Recognizer is speech to text mock
type Recognizer struct{ mock.Mock }

func (m *Recognizer) Recognize(ctx context.Context, fileName string, r io.Reader) (string, error) {
	args := m.Called(ctx, fileName, r)
	return args.String(0), args.Error(1)
}

// Translator is translation mock
type Translator struct{ mock.Mock }

func (m *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	args := m.Called(ctx, text, targetLanguage)
	return args.String(0), args.Error(1)
}

// Synthesizer is text to speech mock
type Synthesizer struct{ mock.Mock }

func (m *Synthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	args := m.Called(ctx, text, voiceID)
	return to[[]byte](args.Get(0)), args.Error(1)
}

// To casts mock arg to wanted type, nil safe
func To[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}

func to[T interface{}](val interface{}) T {
	return To[T](val)
}
