package statusservice

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/gorilla/websocket"

	"github.com/airenas/dubber/internal/pkg/persistence"
	"github.com/airenas/dubber/internal/pkg/utils"

	"github.com/airenas/go-app/pkg/goapp"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DB loads upload and dubbing info
type DB interface {
	LoadUpload(ctx context.Context, id string) (*persistence.AudioUpload, error)
	LoadUploads(ctx context.Context) ([]*persistence.AudioUpload, error)
	LoadDubbing(ctx context.Context, id string) (*persistence.Dubbing, error)
	LoadDubbings(ctx context.Context, uploadID string) ([]*persistence.Dubbing, error)
}

// WSConnHandler is websocket connection wrapper
type WSConnHandler interface {
	HandleConnection(WsConn) error
	GetConnections(id string) ([]WsConn, bool)
}

// Data keeps data required for service work
type Data struct {
	Port      int
	DB        DB
	WSHandler WSConnHandler
}

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("starting status service at %d", data.Port)
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 10 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("dubber_status", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.GET("/status/:id", uploadStatusHandler(data))
	e.GET("/dubbing/:id", dubbingStatusHandler(data))
	e.GET("/uploads", uploadsHandler(data))
	e.GET("/uploads/:id", uploadHandler(data))
	e.GET("/live", live(data))
	e.GET("/subscribe", subscribeHandler(data))

	goapp.Log.Info().Msg("routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

type uploadResult struct {
	ID            string          `json:"id"`
	Filename      string          `json:"filename,omitempty"`
	AudioURL      string          `json:"audioUrl,omitempty"`
	Transcription string          `json:"transcription,omitempty"`
	Status        string          `json:"status"`
	Error         string          `json:"error,omitempty"`
	Dubbings      []dubbingResult `json:"dubbings,omitempty"`
}

type dubbingResult struct {
	ID             string `json:"id"`
	UploadID       string `json:"uploadId,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	VoiceID        string `json:"voiceId,omitempty"`
	AudioURL       string `json:"audioUrl,omitempty"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
}

const notFoundStatus = "NOT_FOUND"

func uploadStatusHandler(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("status method")()

		id := c.Param("id")
		if id == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "No ID")
		}
		up, err := data.DB.LoadUpload(c.Request().Context(), id)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "Service error")
		}
		if up == nil {
			return c.JSON(http.StatusOK, uploadResult{ID: id, Status: notFoundStatus, Error: notFoundStatus})
		}
		return c.JSON(http.StatusOK, *mapUpload(up))
	}
}

func dubbingStatusHandler(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("dubbing status method")()

		id := c.Param("id")
		if id == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "No ID")
		}
		d, err := data.DB.LoadDubbing(c.Request().Context(), id)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "Service error")
		}
		if d == nil {
			return c.JSON(http.StatusOK, dubbingResult{ID: id, Status: notFoundStatus, Error: notFoundStatus})
		}
		return c.JSON(http.StatusOK, *mapDubbing(d))
	}
}

func uploadsHandler(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("uploads method")()

		ups, err := data.DB.LoadUploads(c.Request().Context())
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "Service error")
		}
		res := make([]uploadResult, 0, len(ups))
		for _, up := range ups {
			res = append(res, *mapUpload(up))
		}
		return c.JSON(http.StatusOK, res)
	}
}

func uploadHandler(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("upload method")()

		id := c.Param("id")
		if id == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "No ID")
		}
		ctx := c.Request().Context()
		up, err := data.DB.LoadUpload(ctx, id)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "Service error")
		}
		if up == nil {
			return c.JSON(http.StatusOK, uploadResult{ID: id, Status: notFoundStatus, Error: notFoundStatus})
		}
		res := mapUpload(up)
		dbs, err := data.DB.LoadDubbings(ctx, id)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "Service error")
		}
		for _, d := range dbs {
			res.Dubbings = append(res.Dubbings, *mapDubbing(d))
		}
		return c.JSON(http.StatusOK, *res)
	}
}

func mapUpload(up *persistence.AudioUpload) *uploadResult {
	return &uploadResult{ID: up.ID, Filename: up.Filename, AudioURL: up.OriginalAudioURL,
		Transcription: utils.FromSQLStr(up.TranscriptionText), Status: up.Status}
}

func mapDubbing(d *persistence.Dubbing) *dubbingResult {
	return &dubbingResult{ID: d.ID, UploadID: d.AudioUploadID, TargetLanguage: d.TargetLanguage,
		VoiceID: d.VoiceID, AudioURL: utils.FromSQLStr(d.DubbedAudioURL), Status: d.Status}
}

func validate(data *Data) error {
	if data.DB == nil {
		return fmt.Errorf("no DB")
	}
	if data.WSHandler == nil {
		return fmt.Errorf("no WSHandler")
	}
	return nil
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	}}

func subscribeHandler(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return err
		}
		defer ws.Close()

		return data.WSHandler.HandleConnection(ws)
	}
}
