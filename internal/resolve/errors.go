package resolve

import "errors"

var (
	ErrConfiguration = errors.New("configuration error")
	ErrSpec          = errors.New("invalid spec")
	ErrSolve         = errors.New("solve failed")
	ErrFetch         = errors.New("package fetch failed")
	ErrUnresolved    = errors.New("spec not resolved")
	ErrPinTarget     = errors.New("pin target not found")
	ErrUnknownStep   = errors.New("unknown step")
)
