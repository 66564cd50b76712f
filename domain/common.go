package domain

import (
	"errors"
	"fmt"
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	// ErrInvalidToken is the umbrella for every token verification failure.
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenInvalid  = fmt.Errorf("%w: signature or format rejected", ErrInvalidToken)
	ErrTokenExpired  = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrTokenNotFound = errors.New("failed to token not found")

	ErrFeatureDisabled = errors.New("feature is not configured")
)
