package worker

import (
	"fmt"
	"testing"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/messages"
	"github.com/airenas/dubber/internal/pkg/pipeline"
	"github.com/airenas/dubber/internal/pkg/status"
	"github.com/airenas/dubber/internal/pkg/test"
	"github.com/airenas/dubber/internal/pkg/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"
)

var (
	dbMock     *mocks.DB
	loaderMock *mocks.AudioLoader
	recMock    *mocks.Recognizer
	senderMock *mocks.Sender
	srvData    *ServiceData
)

func initTest(t *testing.T) {
	dbMock = &mocks.DB{}
	loaderMock = &mocks.AudioLoader{}
	recMock = &mocks.Recognizer{}
	senderMock = &mocks.Sender{}
	pd := &pipeline.ServiceData{DB: dbMock, Loader: loaderMock, Recognizer: recMock, MsgSender: senderMock}
	srvData = &ServiceData{GueClient: &gue.Client{}, WorkerCount: 10, MsgSender: senderMock,
		Pipeline: pd, Testing: true}
	senderMock.On("SendMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	loaderMock.On("Load", mock.Anything, mock.Anything).Return([]byte("audio"), nil)
	recMock.On("Recognize", mock.Anything, mock.Anything, mock.Anything).Return("hello", nil)
	dbMock.On("UpdateTranscription", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dbMock.On("UpdateUploadStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func Test_handleTranscribe(t *testing.T) {
	initTest(t)
	err := handleTranscribe(test.Ctx(t), &messages.TranscribeMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}, AudioURL: "http://files/a.mp3"}, srvData)
	assert.Nil(t, err)
	dbMock.AssertCalled(t, "UpdateTranscription", mock.Anything, "1", "hello")
	// inform started, status change, inform finished
	require.Equal(t, 3, len(senderMock.Calls))
	assert.Equal(t, messages.Inform, senderMock.Calls[0].Arguments[2])
	assert.Equal(t, amessages.InformTypeStarted, senderMock.Calls[0].Arguments[1].(*amessages.InformMessage).Type)
	assert.Equal(t, messages.StatusChange, senderMock.Calls[1].Arguments[2])
	assert.Equal(t, amessages.InformTypeFinished, senderMock.Calls[2].Arguments[1].(*amessages.InformMessage).Type)
}

func Test_handleTranscribe_Fail(t *testing.T) {
	initTest(t)
	recMock.ExpectedCalls = nil
	recMock.On("Recognize", mock.Anything, mock.Anything, mock.Anything).Return("", fmt.Errorf("olia err"))
	err := handleTranscribe(test.Ctx(t), &messages.TranscribeMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}, AudioURL: "http://files/a.mp3"}, srvData)
	assert.NotNil(t, err)
	dbMock.AssertCalled(t, "UpdateUploadStatus", mock.Anything, "1", status.Failed)
}

func Test_handleTranscribe_FailSender(t *testing.T) {
	initTest(t)
	senderMock.ExpectedCalls = nil
	senderMock.On("SendMessage", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("olia err"))
	err := handleTranscribe(test.Ctx(t), &messages.TranscribeMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}, AudioURL: "http://files/a.mp3"}, srvData)
	assert.NotNil(t, err)
	loaderMock.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func Test_failureHandler(t *testing.T) {
	initTest(t)
	fh := failureHandler(srvData)
	retry, delay, err := fh(test.Ctx(t), &messages.TranscribeMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}}, fmt.Errorf("olia err"), &gue.Job{})
	assert.False(t, retry)
	assert.Equal(t, int64(0), int64(delay))
	assert.Nil(t, err)
	require.Equal(t, 1, len(senderMock.Calls))
	assert.Equal(t, amessages.InformTypeFailed, senderMock.Calls[0].Arguments[1].(*amessages.InformMessage).Type)
}

func Test_failureHandler_NoRepeatInform(t *testing.T) {
	initTest(t)
	fh := failureHandler(srvData)
	j := &gue.Job{ErrorCount: 2}
	retry, _, err := fh(test.Ctx(t), &messages.TranscribeMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}}, fmt.Errorf("olia err"), j)
	assert.False(t, retry)
	assert.Nil(t, err)
	require.Equal(t, 0, len(senderMock.Calls))
}

func Test_validate(t *testing.T) {
	initTest(t)
	type args struct {
		data *ServiceData
	}
	pd := srvData.Pipeline
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{name: "OK", args: args{data: &ServiceData{GueClient: &gue.Client{}, WorkerCount: 10, MsgSender: senderMock,
			Pipeline: pd}}, wantErr: false},
		{name: "Fail no gue", args: args{data: &ServiceData{WorkerCount: 10, MsgSender: senderMock, Pipeline: pd}}, wantErr: true},
		{name: "Fail no count", args: args{data: &ServiceData{GueClient: &gue.Client{}, MsgSender: senderMock, Pipeline: pd}}, wantErr: true},
		{name: "Fail no sender", args: args{data: &ServiceData{GueClient: &gue.Client{}, WorkerCount: 10, Pipeline: pd}}, wantErr: true},
		{name: "Fail no pipeline", args: args{data: &ServiceData{GueClient: &gue.Client{}, WorkerCount: 10, MsgSender: senderMock}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validate(tt.args.data); (err != nil) != tt.wantErr {
				t.Errorf("StartWorkerService() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
