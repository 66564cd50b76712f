package domain

import (
	"errors"
	"fmt"
)

var (
	MessageSuccessTelegramLogin = "telegram login verified"
	MessageFailedTelegramLogin  = "failed to verify telegram login"

	ErrTelegramLoginDisabled = fmt.Errorf("%w: telegram login", ErrFeatureDisabled)
	ErrTelegramHashMismatch  = errors.New("telegram login hash mismatch")
	ErrTelegramAuthOutdated  = errors.New("telegram login data is outdated")
	ErrTelegramAuthFuture    = errors.New("telegram login data is dated in the future")
)

type (
	// TelegramLoginRequest mirrors the payload produced by the Telegram Login Widget.
	TelegramLoginRequest struct {
		ID        int64  `json:"id" validate:"required,gt=0"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Username  string `json:"username"`
		PhotoURL  string `json:"photo_url"`
		AuthDate  int64  `json:"auth_date" validate:"required,gt=0"`
		Hash      string `json:"hash" validate:"required,hexadecimal,len=64"`
	}

	TokenResponse struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
	}
)
