package svc

import "errors"

// ErrStorageInitFailed marks a journal backend that could not be brought up.
var ErrStorageInitFailed = errors.New("storage initialization failed")
