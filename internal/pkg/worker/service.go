package worker

import (
	"context"
	"fmt"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/pipeline"
	"github.com/airenas/dubber/internal/pkg/utils"
	"github.com/airenas/dubber/internal/pkg/utils/handler"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vgarvardt/gue/v5"
)

// MsgSender provides send msg functionality
type MsgSender interface {
	SendMessage(context.Context, amessages.Message, string) error
}

// ServiceData keeps data required for service work
type ServiceData struct {
	GueClient   *gue.Client
	WorkerCount int
	MsgSender   MsgSender
	Pipeline    *pipeline.ServiceData
	Testing     bool
}

// StartWorkerService starts the event queue listener service to listen for transcription jobs
// returns channel for tracking if all jobs are finished
func StartWorkerService(ctx context.Context, data *ServiceData) (chan struct{}, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	goapp.Log.Info().Int("workers", data.WorkerCount).Msg("starting listen for messages")
	if data.Testing {
		goapp.Log.Warn().Msg("SERVICE IN TEST MODE")
	}

	wm := gue.WorkMap{
		messages.Work: handler.Create(data, handleTranscribe,
			handler.DefaultOpts[messages.TranscribeMessage]().
				WithFailure(failureHandler(data)).
				WithTimeout(time.Minute*30).
				WithBackoff(handler.DefaultBackoffOrTest(data.Testing))),
	}

	pool, err := gue.NewWorkerPool(
		data.GueClient, wm, data.WorkerCount,
		gue.WithPoolQueue(messages.Work),
		gue.WithPoolLogger(utils.NewGueLoggerAdapter()),
		gue.WithPoolPollInterval(500*time.Millisecond),
		gue.WithPoolPollStrategy(gue.RunAtPollStrategy),
		gue.WithPoolID("dubber-worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not build gue workers pool: %w", err)
	}
	res := make(chan struct{}, 1)
	go func() {
		goapp.Log.Info().Msg("starting workers")
		if err := pool.Run(ctx); err != nil {
			goapp.Log.Error().Err(err).Msg("pool error")
		}
		goapp.Log.Info().Msg("pool workers finished")
		res <- struct{}{}
	}()
	return res, nil
}

func handleTranscribe(ctx context.Context, m *messages.TranscribeMessage, data *ServiceData) error {
	goapp.Log.Info().Str("ID", m.ID).Msg("handling transcribe")
	err := data.MsgSender.SendMessage(ctx, &amessages.InformMessage{
		QueueMessage: *amessages.NewQueueMessageFromM(&m.QueueMessage),
		Type:         amessages.InformTypeStarted, At: time.Now()}, messages.Inform)
	if err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	if _, err := pipeline.RunTranscription(ctx, data.Pipeline, m.ID, m.AudioURL); err != nil {
		return fmt.Errorf("can't transcribe: %w", err)
	}
	err = data.MsgSender.SendMessage(ctx, &amessages.InformMessage{
		QueueMessage: *amessages.NewQueueMessageFromM(&m.QueueMessage),
		Type:         amessages.InformTypeFinished, At: time.Now()}, messages.Inform)
	if err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	goapp.Log.Info().Str("ID", m.ID).Msg("transcription job completed")
	return nil
}

// failureHandler drops the job after several attempts and informs the user
// the job row itself is already marked failed by the pipeline
func failureHandler(data *ServiceData) func(context.Context, *messages.TranscribeMessage, error, *gue.Job) (bool, time.Duration, error) {
	return func(ctx context.Context, m *messages.TranscribeMessage, err error, j *gue.Job) (bool, time.Duration, error) {
		if j.ErrorCount < 1 {
			return false, 0, sendInformFailed(ctx, data, m)
		}
		return false, 0, nil
	}
}

func sendInformFailed(ctx context.Context, data *ServiceData, m *messages.TranscribeMessage) error {
	return data.MsgSender.SendMessage(ctx, &amessages.InformMessage{
		QueueMessage: *amessages.NewQueueMessageFromM(&m.QueueMessage),
		Type:         amessages.InformTypeFailed, At: time.Now()}, messages.Inform)
}

func validate(data *ServiceData) error {
	if data.GueClient == nil {
		return fmt.Errorf("no gue client")
	}
	if data.WorkerCount < 1 {
		return fmt.Errorf("no worker count provided")
	}
	if data.MsgSender == nil {
		return fmt.Errorf("no msg sender")
	}
	if data.Pipeline == nil {
		return fmt.Errorf("no pipeline data")
	}
	return nil
}
