package service

import "errors"

var (
	ErrGenerationPending = errors.New("generation already in progress")
	ErrEmptyCredential   = errors.New("api key is empty")
	ErrUnknownField      = errors.New("unknown field")
	ErrInvalidFieldValue = errors.New("invalid field value")
)
