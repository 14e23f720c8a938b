package utils

import "fmt"

// ErrValidation indicates bad or missing input data
type ErrValidation struct {
	err error
}

// NewErrValidation creates new validation error
func NewErrValidation(err error) error {
	return &ErrValidation{err: err}
}

func (e *ErrValidation) Error() string {
	return e.err.Error()
}

func (e *ErrValidation) Unwrap() error {
	return e.err
}

// ErrUpstream indicates a non-success response from an external AI service
type ErrUpstream struct {
	srv string
	err error
}

// NewErrUpstream creates new upstream service error
func NewErrUpstream(srv string, err error) error {
	return &ErrUpstream{srv: srv, err: err}
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("%s: %v", e.srv, e.err)
}

func (e *ErrUpstream) Unwrap() error {
	return e.err
}

// ErrStorage indicates a blob store read/write failure
type ErrStorage struct {
	err error
}

// NewErrStorage creates new storage error
func NewErrStorage(err error) error {
	return &ErrStorage{err: err}
}

func (e *ErrStorage) Error() string {
	return "storage: " + e.err.Error()
}

func (e *ErrStorage) Unwrap() error {
	return e.err
}

// ErrPersistence indicates a database read/write failure
type ErrPersistence struct {
	err error
}

// NewErrPersistence creates new persistence error
func NewErrPersistence(err error) error {
	return &ErrPersistence{err: err}
}

func (e *ErrPersistence) Error() string {
	return "db: " + e.err.Error()
}

func (e *ErrPersistence) Unwrap() error {
	return e.err
}
