package pipeline

import (
	"bytes"
	"context"
	"fmt"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/status"
	"github.com/airenas/dubber/internal/pkg/utils"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pkg/errors"
)

// RunTranscription executes the transcription job for one upload:
// downloads the audio, sends it to the recognizer and persists the terminal state.
// One attempt, no retries.
func RunTranscription(ctx context.Context, data *ServiceData, uploadID, audioURL string) (string, error) {
	if uploadID == "" || audioURL == "" {
		return "", utils.NewErrValidation(errors.New("uploadId and audioUrl are required"))
	}
	goapp.Log.Info().Str("ID", uploadID).Str("url", goapp.Sanitize(audioURL)).Msg("starting transcription")

	audio, err := data.Loader.Load(ctx, audioURL)
	if err != nil {
		markUploadFailed(ctx, data, uploadID)
		return "", utils.NewErrStorage(fmt.Errorf("can't download audio: %w", err))
	}
	text, err := data.Recognizer.Recognize(ctx, "audio.mp3", bytes.NewReader(audio))
	if err != nil {
		markUploadFailed(ctx, data, uploadID)
		return "", utils.NewErrUpstream("transcription service", err)
	}
	if err := data.DB.UpdateTranscription(ctx, uploadID, text); err != nil {
		markUploadFailed(ctx, data, uploadID)
		return "", utils.NewErrPersistence(err)
	}
	sendStatusChange(ctx, data, uploadID, messages.KindUpload)
	goapp.Log.Info().Str("ID", uploadID).Msg("transcription completed")
	return text, nil
}

// markUploadFailed is best-effort - a failure here is logged, not returned
func markUploadFailed(ctx context.Context, data *ServiceData, id string) {
	if err := data.DB.UpdateUploadStatus(ctx, id, status.Failed); err != nil {
		goapp.Log.Error().Err(err).Str("ID", id).Msg("can't mark upload as failed")
		return
	}
	sendStatusChange(ctx, data, id, messages.KindUpload)
}

// sendStatusChange is best-effort too, pollers see the row anyway
func sendStatusChange(ctx context.Context, data *ServiceData, id, kind string) {
	if data.MsgSender == nil {
		return
	}
	err := data.MsgSender.SendMessage(ctx, &messages.StatusMessage{
		QueueMessage: amessages.QueueMessage{ID: id}, Kind: kind}, messages.StatusChange)
	if err != nil {
		goapp.Log.Error().Err(err).Str("ID", id).Msg("can't send status change msg")
	}
}
