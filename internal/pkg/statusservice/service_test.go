package statusservice

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/airenas/dubber/internal/pkg/persistence"
	"github.com/airenas/dubber/internal/pkg/status"
	"github.com/airenas/dubber/internal/pkg/test"
	"github.com/airenas/dubber/internal/pkg/test/mocks"
	"github.com/airenas/dubber/internal/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	wsHandlerMock *mockWSConnHandler
	dbMock        *mocks.DB
	tData         *Data
	tEcho         *echo.Echo
)

func initTest(t *testing.T) {
	wsHandlerMock = &mockWSConnHandler{}
	dbMock = &mocks.DB{}
	tData = &Data{}
	tData.DB = dbMock
	tData.WSHandler = wsHandlerMock
	tEcho = initRoutes(tData)
	dbMock.On("LoadUpload", mock.Anything, mock.Anything).Return(&persistence.AudioUpload{ID: "1",
		Filename: "a.mp3", OriginalAudioURL: "http://files/originals/1-a.mp3",
		TranscriptionText: utils.ToSQLStr("hello"), Status: status.Completed.String()}, nil)
	dbMock.On("LoadDubbing", mock.Anything, mock.Anything).Return(&persistence.Dubbing{ID: "d1",
		AudioUploadID: "1", TargetLanguage: "es", VoiceID: "v1",
		DubbedAudioURL: utils.ToSQLStr("http://files/dubbed/d1-1.mp3"), Status: status.Completed.String()}, nil)
}

func TestWrongPath(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/invalid", nil)
	test.Code(t, tEcho, req, http.StatusNotFound)
}

func TestWrongMethod(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodPost, "/status/1", nil)
	test.Code(t, tEcho, req, http.StatusMethodNotAllowed)
}

func Test_Status_Returns(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/status/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[uploadResult](t, resp)
	assert.Equal(t, uploadResult{ID: "1", Filename: "a.mp3", AudioURL: "http://files/originals/1-a.mp3",
		Transcription: "hello", Status: "completed"}, res)
}

func Test_Status_Empty(t *testing.T) {
	initTest(t)
	dbMock.ExpectedCalls = nil
	dbMock.On("LoadUpload", mock.Anything, mock.Anything).Return(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/status/2", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[uploadResult](t, resp)
	assert.Equal(t, uploadResult{ID: "2", Status: "NOT_FOUND", Error: "NOT_FOUND"}, res)
}

func Test_Status_Fail(t *testing.T) {
	initTest(t)
	dbMock.ExpectedCalls = nil
	dbMock.On("LoadUpload", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia"))
	req := httptest.NewRequest(http.MethodGet, "/status/1", nil)
	test.Code(t, tEcho, req, http.StatusInternalServerError)
}

func Test_Dubbing_Returns(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/dubbing/d1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[dubbingResult](t, resp)
	assert.Equal(t, dubbingResult{ID: "d1", UploadID: "1", TargetLanguage: "es", VoiceID: "v1",
		AudioURL: "http://files/dubbed/d1-1.mp3", Status: "completed"}, res)
}

func Test_Dubbing_Empty(t *testing.T) {
	initTest(t)
	dbMock.ExpectedCalls = nil
	dbMock.On("LoadDubbing", mock.Anything, mock.Anything).Return(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/dubbing/d2", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[dubbingResult](t, resp)
	assert.Equal(t, dubbingResult{ID: "d2", Status: "NOT_FOUND", Error: "NOT_FOUND"}, res)
}

func Test_Uploads_Returns(t *testing.T) {
	initTest(t)
	dbMock.On("LoadUploads", mock.Anything).Return([]*persistence.AudioUpload{
		{ID: "1", Status: status.Completed.String()}, {ID: "2", Status: status.Failed.String()}}, nil)
	req := httptest.NewRequest(http.MethodGet, "/uploads", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[[]uploadResult](t, resp)
	assert.Equal(t, 2, len(res))
	assert.Equal(t, "failed", res[1].Status)
}

func Test_Upload_WithDubbings(t *testing.T) {
	initTest(t)
	dbMock.On("LoadDubbings", mock.Anything, "1").Return([]*persistence.Dubbing{
		{ID: "d1", AudioUploadID: "1", Status: status.Processing.String()}}, nil)
	req := httptest.NewRequest(http.MethodGet, "/uploads/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[uploadResult](t, resp)
	assert.Equal(t, "1", res.ID)
	assert.Equal(t, 1, len(res.Dubbings))
	assert.Equal(t, "d1", res.Dubbings[0].ID)
}

func Test_Live(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	test.Code(t, tEcho, req, http.StatusOK)
}

func Test_validate(t *testing.T) {
	initTest(t)
	type args struct {
		data *Data
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{name: "OK", args: args{data: &Data{DB: dbMock, WSHandler: wsHandlerMock}}, wantErr: false},
		{name: "Fail Handler", args: args{data: &Data{DB: dbMock}}, wantErr: true},
		{name: "Fail DB", args: args{data: &Data{WSHandler: wsHandlerMock}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validate(tt.args.data); (err != nil) != tt.wantErr {
				t.Errorf("StartWebServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type mockWSConnHandler struct{ mock.Mock }

func (m *mockWSConnHandler) HandleConnection(wc WsConn) error {
	args := m.Called(wc)
	return args.Error(0)
}

func (m *mockWSConnHandler) GetConnections(id string) ([]WsConn, bool) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]WsConn), args.Bool(1)
}
