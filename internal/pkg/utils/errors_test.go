package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrValidation(t *testing.T) {
	in := errors.New("uploadId and audioUrl are required")
	err := NewErrValidation(in)
	assert.Equal(t, "uploadId and audioUrl are required", err.Error())
	assert.True(t, errors.Is(err, in))
	var ev *ErrValidation
	assert.True(t, errors.As(err, &ev))
}

func TestErrUpstream(t *testing.T) {
	in := errors.New("olia")
	err := NewErrUpstream("text to speech service", in)
	assert.Equal(t, "text to speech service: olia", err.Error())
	assert.True(t, errors.Is(err, in))
}

func TestErrStorage(t *testing.T) {
	in := errors.New("olia")
	err := NewErrStorage(in)
	assert.Equal(t, "storage: olia", err.Error())
	assert.True(t, errors.Is(err, in))
}

func TestErrPersistence(t *testing.T) {
	in := fmt.Errorf("olia")
	err := NewErrPersistence(in)
	assert.Equal(t, "db: olia", err.Error())
	assert.True(t, errors.Is(err, in))
}
