package pipeline

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/facebookgo/grace/gracehttp"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// StartWebServer starts echo web service
func StartWebServer(data *ServiceData) error {
	goapp.Log.Info().Msgf("starting pipeline service at %d", data.Port)

	if err := validate(data); err != nil {
		return err
	}
	portStr := strconv.Itoa(data.Port)
	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.IdleTimeout = 3 * time.Minute
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.ReadTimeout = 60 * time.Second
	e.Server.WriteTimeout = 15 * time.Minute

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))
	return gracehttp.Serve(e.Server)
}

func validate(data *ServiceData) error {
	if data.DB == nil {
		return fmt.Errorf("no db")
	}
	if data.Saver == nil {
		return fmt.Errorf("no file saver")
	}
	if data.Loader == nil {
		return fmt.Errorf("no audio loader")
	}
	if data.Recognizer == nil {
		return fmt.Errorf("no recognizer")
	}
	if data.Translator == nil {
		return fmt.Errorf("no translator")
	}
	if data.Synthesizer == nil {
		return fmt.Errorf("no synthesizer")
	}
	return nil
}

func initRoutes(data *ServiceData) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(corsMiddleware())
	p := prometheus.NewPrometheus("pipeline", nil)
	p.Use(e)

	e.POST("/transcribe-audio", transcribeAudio(data))
	e.OPTIONS("/transcribe-audio", preflight)
	e.POST("/create-dubbing", createDubbing(data))
	e.OPTIONS("/create-dubbing", preflight)
	e.GET("/live", live(data))

	goapp.Log.Info().Msg("routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

// corsMiddleware allows browser calls from any origin
func corsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowHeaders, "authorization, x-client-info, apikey, content-type")
			return next(c)
		}
	}
}

func preflight(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type transcribeRequest struct {
	UploadID string `json:"uploadId"`
	AudioURL string `json:"audioUrl"`
}

type transcribeResult struct {
	Success       bool   `json:"success"`
	Transcription string `json:"transcription"`
}

type dubbingRequest struct {
	UploadID       string `json:"uploadId"`
	TargetLanguage string `json:"targetLanguage"`
	VoiceID        string `json:"voiceId"`
}

type dubbingResponse struct {
	Success   bool   `json:"success"`
	DubbingID string `json:"dubbingId"`
	AudioURL  string `json:"audioUrl"`
}

type errResult struct {
	Error string `json:"error"`
}

func transcribeAudio(data *ServiceData) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("transcribeAudio method")()
		var input transcribeRequest
		if err := c.Bind(&input); err != nil {
			goapp.Log.Error().Err(err).Msg("can't bind input")
			return c.JSON(http.StatusInternalServerError, errResult{Error: "can't read request body"})
		}
		text, err := RunTranscription(c.Request().Context(), data, input.UploadID, input.AudioURL)
		if err != nil {
			goapp.Log.Error().Err(err).Msg("transcription failed")
			return c.JSON(http.StatusInternalServerError, errResult{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, transcribeResult{Success: true, Transcription: text})
	}
}

func createDubbing(data *ServiceData) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("createDubbing method")()
		var input dubbingRequest
		if err := c.Bind(&input); err != nil {
			goapp.Log.Error().Err(err).Msg("can't bind input")
			return c.JSON(http.StatusInternalServerError, errResult{Error: "can't read request body"})
		}
		res, err := RunDubbing(c.Request().Context(), data, input.UploadID, input.TargetLanguage, input.VoiceID)
		if err != nil {
			goapp.Log.Error().Err(err).Msg("dubbing failed")
			return c.JSON(http.StatusInternalServerError, errResult{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, dubbingResponse{Success: true, DubbingID: res.ID, AudioURL: res.AudioURL})
	}
}

func live(data *ServiceData) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}
