package statusservice

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/dubber/internal/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/utils"
	"github.com/airenas/dubber/internal/pkg/utils/handler"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vgarvardt/gue/v5"
)

// HandlerData keeps data required for handler
type HandlerData struct {
	GueClient   *gue.Client
	WorkerCount int
	DB          DB
	WSHandler   WSConnHandler
}

// StartStatusHandler starts the event queue listener for status events
// returns channel for tracking if all jobs are finished
func StartStatusHandler(ctx context.Context, data *HandlerData) (chan struct{}, error) {
	if err := validateHandler(data); err != nil {
		return nil, err
	}
	goapp.Log.Info().Msg("starting listen for status messages")

	wm := gue.WorkMap{
		messages.StatusChange: handler.Create(data, handleStatusChange, handler.DefaultOpts[messages.StatusMessage]()),
	}

	pool, err := gue.NewWorkerPool(
		data.GueClient, wm, data.WorkerCount,
		gue.WithPoolQueue(messages.StatusChange),
		gue.WithPoolLogger(utils.NewGueLoggerAdapter()),
		gue.WithPoolPollInterval(500*time.Millisecond),
		gue.WithPoolPollStrategy(gue.RunAtPollStrategy),
		gue.WithPoolID("status-worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not build gue workers pool: %w", err)
	}
	res := make(chan struct{}, 1)
	go func() {
		goapp.Log.Info().Msg("starting status workers")
		if err := pool.Run(ctx); err != nil {
			goapp.Log.Error().Err(err).Msg("pool error")
		}
		goapp.Log.Info().Msg("pool workers finished")
		res <- struct{}{}
	}()
	return res, nil
}

func handleStatusChange(ctx context.Context, m *messages.StatusMessage, data *HandlerData) error {
	goapp.Log.Info().Str("ID", m.ID).Str("kind", m.Kind).Msg("handling status change event")

	conns, found := data.WSHandler.GetConnections(m.ID)
	if !found {
		goapp.Log.Debug().Str("ID", m.ID).Msg("no connections found")
		return nil
	}
	var res interface{}
	if m.Kind == messages.KindDubbing {
		d, err := data.DB.LoadDubbing(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("cannot get dubbing for ID %s: %w", m.ID, err)
		}
		if d == nil {
			return fmt.Errorf("no dubbing for ID %s", m.ID)
		}
		res = mapDubbing(d)
	} else {
		up, err := data.DB.LoadUpload(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("cannot get upload for ID %s: %w", m.ID, err)
		}
		if up == nil {
			return fmt.Errorf("no upload for ID %s", m.ID)
		}
		res = mapUpload(up)
	}
	for _, c := range conns {
		if err := sendMsg(c, m.ID, res); err != nil {
			goapp.Log.Error().Err(err).Send()
		}
	}
	return nil
}

func sendMsg(c WsConn, id string, res interface{}) error {
	goapp.Log.Debug().Str("ID", id).Msg("sending result to websocket")
	if err := c.WriteJSON(res); err != nil {
		return fmt.Errorf("cannot write to websocket: %w", err)
	}
	return nil
}

func validateHandler(data *HandlerData) error {
	if data.GueClient == nil {
		return fmt.Errorf("no gue client")
	}
	if data.WorkerCount < 1 {
		return fmt.Errorf("no worker count provided")
	}
	if data.DB == nil {
		return fmt.Errorf("no DB")
	}
	if data.WSHandler == nil {
		return fmt.Errorf("no WSHandler")
	}
	return nil
}
