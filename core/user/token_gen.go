package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/darasahq/darasa/core"
)

var (
	tokenSalt = []byte("darasa.core.user.token_gen")
	NowFunc   = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// EncodeUID base64 encodes the User ID for use in a password reset URL.
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

func decodeUID(uid string) (string, error) {
	id, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(id), nil
}

// MakeToken generates a password reset token for usr. The token embeds its
// issue day and a signature over the user's mutable auth state, so a password
// change or a new login invalidates it; it also expires after
// Conf.PasswordResetTimeoutDelta.
func MakeToken(usr User) (string, error) {
	return tokenForDay(usr, daysSinceRef(NowFunc()))
}

// verifyToken checks that token is untampered, belongs to usr and has not expired.
func verifyToken(usr User, token string) error {
	parts := strings.SplitN(token, "-", 2)
	if token == "" || len(parts) < 2 {
		return errInvalidToken
	}

	raw, err := b32.DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}
	day, err := strconv.Atoi(string(raw))
	if err != nil {
		return errInvalidToken
	}

	expected, err := tokenForDay(usr, day)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 0 {
		return errInvalidToken
	}

	maxAge := int(core.Conf.PasswordResetTimeoutDelta / (24 * time.Hour))
	if daysSinceRef(NowFunc())-day > maxAge {
		return errTokenExpired
	}
	return nil
}

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

func tokenForDay(usr User, day int) (string, error) {
	var state bytes.Buffer
	state.WriteString(usr.ID)
	state.Write(usr.PasswordHash)
	if !usr.LastLogin.IsZero() {
		state.WriteString(usr.LastLogin.String())
	}
	state.WriteString(strconv.Itoa(day))

	key := sha256.Sum256(append(tokenSalt, core.Conf.SecretKey...))
	h := hmac.New(sha256.New, key[:])
	if _, err := h.Write(state.Bytes()); err != nil {
		return "", err
	}
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))

	return b32.EncodeToString([]byte(strconv.Itoa(day))) + "-" + sig, nil
}

func daysSinceRef(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}
