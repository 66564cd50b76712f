package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"purchases-api/domain"
)

const (
	DefaultAuthMaxAge = 24 * time.Hour

	// authClockSkew is how far auth_date may run ahead of our clock.
	authClockSkew = time.Minute
)

type (
	// LoginVerifier checks payloads produced by the Telegram Login Widget.
	LoginVerifier interface {
		Verify(data domain.TelegramLoginRequest) (int64, error)
	}

	loginVerifier struct {
		botToken string
		maxAge   time.Duration
		now      func() time.Time
	}
)

func NewLoginVerifier(botToken string, maxAge time.Duration) LoginVerifier {
	if maxAge <= 0 {
		maxAge = DefaultAuthMaxAge
	}
	return &loginVerifier{
		botToken: botToken,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Verify returns the Telegram user ID once the hash and auth date check out.
func (v *loginVerifier) Verify(data domain.TelegramLoginRequest) (int64, error) {
	if v.botToken == "" {
		return 0, domain.ErrTelegramLoginDisabled
	}

	expected := v.sign(dataCheckString(data))
	got, err := hex.DecodeString(strings.ToLower(data.Hash))
	if err != nil || !hmac.Equal(expected, got) {
		return 0, domain.ErrTelegramHashMismatch
	}

	now := v.now()
	authAt := time.Unix(data.AuthDate, 0)
	if now.Sub(authAt) > v.maxAge {
		return 0, domain.ErrTelegramAuthOutdated
	}
	if authAt.After(now.Add(authClockSkew)) {
		return 0, domain.ErrTelegramAuthFuture
	}
	return data.ID, nil
}

// sign is HMAC-SHA256 keyed by SHA256(bot token).
func (v *loginVerifier) sign(payload string) []byte {
	secret := sha256.Sum256([]byte(v.botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

// dataCheckString joins the non-empty fields as sorted key=value lines.
func dataCheckString(data domain.TelegramLoginRequest) string {
	fields := map[string]string{
		"id":         strconv.FormatInt(data.ID, 10),
		"first_name": data.FirstName,
		"last_name":  data.LastName,
		"username":   data.Username,
		"photo_url":  data.PhotoURL,
		"auth_date":  strconv.FormatInt(data.AuthDate, 10),
	}

	lines := make([]string, 0, len(fields))
	for k, val := range fields {
		if val == "" {
			continue
		}
		lines = append(lines, k+"="+val)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
