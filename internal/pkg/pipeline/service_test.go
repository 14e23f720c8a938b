package pipeline

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/airenas/dubber/internal/pkg/test"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var tEcho *echo.Echo

func initTestSrv(t *testing.T) {
	initTest(t)
	tEcho = initRoutes(srvData)
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestLive(t *testing.T) {
	initTestSrv(t)
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.Equal(t, `{"service":"OK"}`, resp.Body.String())
}

func TestNotFound(t *testing.T) {
	initTestSrv(t)
	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	test.Code(t, tEcho, req, http.StatusNotFound)
}

func TestTranscribe(t *testing.T) {
	initTestSrv(t)
	loaderMock.On("Load", mock.Anything, mock.Anything).Return([]byte("audio"), nil)
	recMock.On("Recognize", mock.Anything, mock.Anything, mock.Anything).Return("hello", nil)
	dbMock.On("UpdateTranscription", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := jsonReq(http.MethodPost, "/transcribe-audio", `{"uploadId":"u1","audioUrl":"http://files/a.mp3"}`)
	resp := test.Code(t, tEcho, req, http.StatusOK)

	res := test.Decode[transcribeResult](t, resp)
	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.Transcription)
}

func TestTranscribe_FailValidate(t *testing.T) {
	initTestSrv(t)
	req := jsonReq(http.MethodPost, "/transcribe-audio", `{"audioUrl":"http://files/a.mp3"}`)
	resp := test.Code(t, tEcho, req, http.StatusInternalServerError)

	res := test.Decode[errResult](t, resp)
	assert.Equal(t, "uploadId and audioUrl are required", res.Error)
}

func TestTranscribe_FailService(t *testing.T) {
	initTestSrv(t)
	loaderMock.On("Load", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia err"))
	dbMock.On("UpdateUploadStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := jsonReq(http.MethodPost, "/transcribe-audio", `{"uploadId":"u1","audioUrl":"http://files/a.mp3"}`)
	resp := test.Code(t, tEcho, req, http.StatusInternalServerError)

	res := test.Decode[errResult](t, resp)
	assert.NotEmpty(t, res.Error)
}

func TestCreateDubbing(t *testing.T) {
	initTestSrv(t)
	dbMock.On("LoadUpload", mock.Anything, mock.Anything).Return(testUpload(), nil)
	dbMock.On("InsertDubbing", mock.Anything, mock.Anything).Return(nil)
	trMock.On("Translate", mock.Anything, mock.Anything, mock.Anything).Return("Hola", nil)
	synthMock.On("Synthesize", mock.Anything, mock.Anything, mock.Anything).Return([]byte("mp3"), nil)
	filerMock.On("SaveFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	filerMock.On("PublicURL", mock.Anything).Return("http://files/dubbed/x.mp3")
	dbMock.On("UpdateDubbing", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := jsonReq(http.MethodPost, "/create-dubbing", `{"uploadId":"u1","targetLanguage":"es","voiceId":"v1"}`)
	resp := test.Code(t, tEcho, req, http.StatusOK)

	res := test.Decode[dubbingResponse](t, resp)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.DubbingID)
	assert.Equal(t, "http://files/dubbed/x.mp3", res.AudioURL)
}

func TestCreateDubbing_FailValidate(t *testing.T) {
	initTestSrv(t)
	req := jsonReq(http.MethodPost, "/create-dubbing", `{"uploadId":"u1"}`)
	resp := test.Code(t, tEcho, req, http.StatusInternalServerError)

	res := test.Decode[errResult](t, resp)
	assert.Equal(t, "uploadId, targetLanguage, and voiceId are required", res.Error)
}

func TestOptions(t *testing.T) {
	for _, path := range []string{"/transcribe-audio", "/create-dubbing"} {
		t.Run(path, func(t *testing.T) {
			initTestSrv(t)
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			resp := test.Code(t, tEcho, req, http.StatusOK)
			assert.Equal(t, "ok", resp.Body.String())
			assert.Equal(t, "*", resp.Header().Get(echo.HeaderAccessControlAllowOrigin))
			assert.Equal(t, "authorization, x-client-info, apikey, content-type",
				resp.Header().Get(echo.HeaderAccessControlAllowHeaders))
		})
	}
}

func TestCORSHeadersOnPost(t *testing.T) {
	initTestSrv(t)
	req := jsonReq(http.MethodPost, "/create-dubbing", `{}`)
	resp := test.Code(t, tEcho, req, http.StatusInternalServerError)
	assert.Equal(t, "*", resp.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func Test_validate(t *testing.T) {
	initTest(t)
	require.Nil(t, validate(srvData))
	srvData.Recognizer = nil
	require.NotNil(t, validate(srvData))
}
