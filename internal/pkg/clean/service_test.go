package clean

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/airenas/dubber/internal/pkg/test"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	upCleanerMock *mockCleaner
	dbCleanerMock *mockCleaner
	tData         *Data
	tEcho         *echo.Echo
)

func initTest(t *testing.T) {
	upCleanerMock = &mockCleaner{}
	dbCleanerMock = &mockCleaner{}
	tData = &Data{UploadCleaner: upCleanerMock, DubbingCleaner: dbCleanerMock}
	tEcho = initRoutes(tData)
	upCleanerMock.On("Clean", mock.Anything, mock.Anything).Return(nil)
	dbCleanerMock.On("Clean", mock.Anything, mock.Anything).Return(nil)
}

func TestWrongPath(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodDelete, "/invalid", nil)
	test.Code(t, tEcho, req, http.StatusNotFound)
}

func TestWrongMethod(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/upload/1", nil)
	test.Code(t, tEcho, req, http.StatusMethodNotAllowed)
}

func Test_DeleteUpload(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodDelete, "/upload/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.Equal(t, "deleted", test.RStr(t, resp.Body))
	upCleanerMock.AssertCalled(t, "Clean", mock.Anything, "1")
	dbCleanerMock.AssertNotCalled(t, "Clean", mock.Anything, mock.Anything)
}

func Test_DeleteDubbing(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodDelete, "/dubbing/d1", nil)
	test.Code(t, tEcho, req, http.StatusOK)
	dbCleanerMock.AssertCalled(t, "Clean", mock.Anything, "d1")
}

func Test_Delete_Fail(t *testing.T) {
	initTest(t)
	upCleanerMock.ExpectedCalls = nil
	upCleanerMock.On("Clean", mock.Anything, mock.Anything).Return(fmt.Errorf("olia err"))
	req := httptest.NewRequest(http.MethodDelete, "/upload/1", nil)
	test.Code(t, tEcho, req, http.StatusInternalServerError)
}

func Test_Live(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	test.Code(t, tEcho, req, http.StatusOK)
}

func Test_validate(t *testing.T) {
	initTest(t)
	assert.Nil(t, validate(tData))
	assert.NotNil(t, validate(&Data{UploadCleaner: upCleanerMock}))
	assert.NotNil(t, validate(&Data{DubbingCleaner: dbCleanerMock}))
}

type mockCleaner struct{ mock.Mock }

func (m *mockCleaner) Clean(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
