package statusservice

import (
	"fmt"
	"testing"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/persistence"
	"github.com/airenas/dubber/internal/pkg/status"
	"github.com/airenas/dubber/internal/pkg/test"
	"github.com/airenas/dubber/internal/pkg/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"
)

var (
	handlerEHMMock *mockWSConnHandler
	hndData        *HandlerData
	connMock       *mockWSConn
)

func initHandlerTest(t *testing.T) {
	dbMock = &mocks.DB{}
	handlerEHMMock = &mockWSConnHandler{}
	connMock = &mockWSConn{}
	hndData = &HandlerData{DB: dbMock, GueClient: &gue.Client{}, WorkerCount: 10, WSHandler: handlerEHMMock}
	handlerEHMMock.On("GetConnections", mock.Anything).Return([]WsConn{connMock}, true)
	dbMock.On("LoadUpload", mock.Anything, mock.Anything).Return(&persistence.AudioUpload{ID: "1",
		Status: status.Completed.String()}, nil)
	dbMock.On("LoadDubbing", mock.Anything, mock.Anything).Return(&persistence.Dubbing{ID: "d1",
		AudioUploadID: "1", Status: status.Completed.String()}, nil)
	connMock.On("WriteJSON", mock.Anything).Return(nil)
}

func Test_handleStatusChange_Upload(t *testing.T) {
	initHandlerTest(t)
	err := handleStatusChange(test.Ctx(t), &messages.StatusMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}, Kind: messages.KindUpload}, hndData)
	assert.Nil(t, err)
	require.Equal(t, 1, len(connMock.Calls))
	assert.Equal(t, &uploadResult{ID: "1", Status: "completed"}, connMock.Calls[0].Arguments[0])
}

func Test_handleStatusChange_Dubbing(t *testing.T) {
	initHandlerTest(t)
	err := handleStatusChange(test.Ctx(t), &messages.StatusMessage{
		QueueMessage: amessages.QueueMessage{ID: "d1"}, Kind: messages.KindDubbing}, hndData)
	assert.Nil(t, err)
	require.Equal(t, 1, len(connMock.Calls))
	assert.Equal(t, &dubbingResult{ID: "d1", UploadID: "1", Status: "completed"}, connMock.Calls[0].Arguments[0])
	dbMock.AssertNotCalled(t, "LoadUpload", mock.Anything, mock.Anything)
}

func Test_handleStatusChange_NoConn(t *testing.T) {
	initHandlerTest(t)
	handlerEHMMock.ExpectedCalls = nil
	handlerEHMMock.On("GetConnections", mock.Anything).Return([]WsConn{}, false)
	err := handleStatusChange(test.Ctx(t), &messages.StatusMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}, Kind: messages.KindUpload}, hndData)
	assert.Nil(t, err)
	require.Equal(t, 0, len(connMock.Calls))
}

func Test_handleStatusChange_NoUpload(t *testing.T) {
	initHandlerTest(t)
	dbMock.ExpectedCalls = nil
	dbMock.On("LoadUpload", mock.Anything, mock.Anything).Return(nil, nil)
	err := handleStatusChange(test.Ctx(t), &messages.StatusMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}, Kind: messages.KindUpload}, hndData)
	assert.NotNil(t, err)
}

func Test_handleStatusChange_Error(t *testing.T) {
	initHandlerTest(t)
	dbMock.ExpectedCalls = nil
	dbMock.On("LoadDubbing", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia"))
	err := handleStatusChange(test.Ctx(t), &messages.StatusMessage{
		QueueMessage: amessages.QueueMessage{ID: "d1"}, Kind: messages.KindDubbing}, hndData)
	assert.NotNil(t, err)
}

func Test_validateHandler(t *testing.T) {
	initHandlerTest(t)
	type args struct {
		data *HandlerData
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{name: "OK", args: args{data: &HandlerData{DB: dbMock, GueClient: &gue.Client{}, WorkerCount: 10, WSHandler: handlerEHMMock}}, wantErr: false},
		{name: "Fail no gue", args: args{data: &HandlerData{DB: dbMock, WorkerCount: 10, WSHandler: handlerEHMMock}}, wantErr: true},
		{name: "Fail no count", args: args{data: &HandlerData{DB: dbMock, GueClient: &gue.Client{}, WSHandler: handlerEHMMock}}, wantErr: true},
		{name: "Fail no db", args: args{data: &HandlerData{GueClient: &gue.Client{}, WorkerCount: 10, WSHandler: handlerEHMMock}}, wantErr: true},
		{name: "Fail no handler", args: args{data: &HandlerData{DB: dbMock, GueClient: &gue.Client{}, WorkerCount: 10}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateHandler(tt.args.data); (err != nil) != tt.wantErr {
				t.Errorf("StartStatusHandler() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type mockWSConn struct{ mock.Mock }

func (m *mockWSConn) ReadMessage() (messageType int, p []byte, err error) {
	args := m.Called()
	return args.Int(0), args.Get(1).([]byte), args.Error(2)
}

func (m *mockWSConn) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockWSConn) WriteJSON(v interface{}) error {
	args := m.Called(v)
	return args.Error(0)
}
