package service

import "errors"

var (
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("resource not found")
	ErrReaderNil      = errors.New("reader is nil")
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrTooLarge       = errors.New("dataset exceeds the upload limit")
	ErrInvalidParams  = errors.New("invalid discovery parameters")
	ErrNotReady       = errors.New("discovery has not succeeded")
	ErrUnavailable    = errors.New("discovery workers unavailable")
)
