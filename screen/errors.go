package screen

import "errors"

var (
	ErrResourceNotFound  = errors.New("settings resource not found")
	ErrContainerNotFound = errors.New("no settings screen in container")
	ErrFieldNotFound     = errors.New("settings field not found")
	ErrInvalidResource   = errors.New("invalid settings resource")
)
