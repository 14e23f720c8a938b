package pipeline

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/airenas/dubber/internal/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/persistence"
	"github.com/airenas/dubber/internal/pkg/status"
	"github.com/airenas/dubber/internal/pkg/utils"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sourceLanguage is the language of transcriptions, targets equal to it skip translation
const sourceLanguage = "en"

// DubbingResult is returned on successful dubbing
type DubbingResult struct {
	ID       string
	AudioURL string
}

// RunDubbing executes the dubbing job: creates the dubbing record, translates the
// transcription if needed, synthesizes speech, stores the audio and finalizes the record.
// The record is created before any external call - a crash leaves a processing row,
// not a silent loss. Every later failure moves the row to failed.
func RunDubbing(ctx context.Context, data *ServiceData, uploadID, targetLanguage, voiceID string) (*DubbingResult, error) {
	if uploadID == "" || targetLanguage == "" || voiceID == "" {
		return nil, utils.NewErrValidation(errors.New("uploadId, targetLanguage, and voiceId are required"))
	}
	goapp.Log.Info().Str("ID", uploadID).Str("lang", targetLanguage).Str("voice", voiceID).Msg("starting dubbing")

	up, err := data.DB.LoadUpload(ctx, uploadID)
	if err != nil {
		return nil, utils.NewErrPersistence(fmt.Errorf("can't load upload: %w", err))
	}
	if up == nil {
		return nil, utils.NewErrValidation(errors.Errorf("upload not found: %s", uploadID))
	}
	text := utils.FromSQLStr(up.TranscriptionText)
	if text == "" {
		return nil, utils.NewErrValidation(errors.New("no transcription available for dubbing"))
	}

	d := &persistence.Dubbing{ID: uuid.New().String(), AudioUploadID: uploadID,
		TargetLanguage: targetLanguage, VoiceID: voiceID,
		Status: status.Processing.String(), Created: time.Now()}
	if err := data.DB.InsertDubbing(ctx, d); err != nil {
		return nil, utils.NewErrPersistence(fmt.Errorf("can't insert dubbing: %w", err))
	}
	goapp.Log.Info().Str("ID", d.ID).Str("upload", uploadID).Msg("created dubbing record")

	if targetLanguage != sourceLanguage {
		translated, err := data.Translator.Translate(ctx, text, targetLanguage)
		if err != nil {
			// translation failure is not fatal, dub the original text
			goapp.Log.Warn().Err(err).Str("ID", d.ID).Msg("translation failed, using original text")
		} else {
			text = translated
		}
	}

	audio, err := data.Synthesizer.Synthesize(ctx, text, voiceID)
	if err != nil {
		markDubbingFailed(ctx, data, d.ID)
		return nil, utils.NewErrUpstream("text to speech service", err)
	}
	key := utils.MakeDubbedKey(d.ID)
	if err := data.Saver.SaveFile(ctx, key, bytes.NewReader(audio), int64(len(audio)), "audio/mpeg"); err != nil {
		markDubbingFailed(ctx, data, d.ID)
		return nil, utils.NewErrStorage(fmt.Errorf("can't save dubbed audio: %w", err))
	}
	url := data.Saver.PublicURL(key)
	if err := data.DB.UpdateDubbing(ctx, d.ID, status.Completed, utils.ToSQLStr(url)); err != nil {
		markDubbingFailed(ctx, data, d.ID)
		return nil, utils.NewErrPersistence(err)
	}
	sendStatusChange(ctx, data, d.ID, messages.KindDubbing)
	goapp.Log.Info().Str("ID", d.ID).Msg("dubbing completed")
	return &DubbingResult{ID: d.ID, AudioURL: url}, nil
}

// markDubbingFailed is best-effort - a failure here is logged, not returned
func markDubbingFailed(ctx context.Context, data *ServiceData, id string) {
	if err := data.DB.UpdateDubbing(ctx, id, status.Failed, sql.NullString{}); err != nil {
		goapp.Log.Error().Err(err).Str("ID", id).Msg("can't mark dubbing as failed")
		return
	}
	sendStatusChange(ctx, data, id, messages.KindDubbing)
}
