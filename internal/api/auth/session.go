package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/codr1/CourtReserve/internal/api/authz"
)

const (
	sessionCookieName = "court_session"
	sessionTTL        = 8 * time.Hour
)

var (
	errAuthConfigMissing = errors.New("auth configuration missing")
	errInvalidSession    = errors.New("invalid session cookie")
	errSessionExpired    = errors.New("session expired")
)

// session is the signed cookie payload. The user row is reloaded on every
// request so role changes and deletions take effect immediately.
type session struct {
	UserID    int64 `json:"uid"`
	ExpiresAt int64 `json:"exp"`
}

func isSecureCookie() bool {
	return appConfig == nil || appConfig.App.Environment != "development"
}

// SetSessionCookie issues a signed session cookie for userID.
func SetSessionCookie(w http.ResponseWriter, userID int64) error {
	if w == nil {
		return errors.New("session requires response writer")
	}
	expiresAt := time.Now().Add(sessionTTL)
	value, err := encodeSession(session{UserID: userID, ExpiresAt: expiresAt.Unix()})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

func ClearSessionCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// UserFromRequest resolves the signed-in user. It returns nil without error
// when there is no session or the user no longer exists.
func UserFromRequest(w http.ResponseWriter, r *http.Request) (*authz.AuthUser, error) {
	if r == nil {
		return nil, nil
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	s, err := decodeSession(cookie.Value)
	if err != nil {
		ClearSessionCookie(w)
		if errors.Is(err, errSessionExpired) {
			return nil, nil
		}
		return nil, err
	}

	q := loadQueries()
	if q == nil {
		return nil, errors.New("auth queries not initialized")
	}
	user, err := q.GetUserByID(r.Context(), s.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ClearSessionCookie(w)
			return nil, nil
		}
		return nil, err
	}

	return &authz.AuthUser{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}, nil
}

func encodeSession(s session) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	signature, err := signPayload(encoded)
	if err != nil {
		return "", err
	}
	return encoded + "." + signature, nil
}

func decodeSession(value string) (session, error) {
	encoded, signature, ok := strings.Cut(value, ".")
	if !ok {
		return session{}, errInvalidSession
	}
	expected, err := signPayload(encoded)
	if err != nil {
		return session{}, err
	}
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return session{}, errInvalidSession
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return session{}, errInvalidSession
	}
	var s session
	if err := json.Unmarshal(payload, &s); err != nil {
		return session{}, errInvalidSession
	}
	if s.ExpiresAt <= time.Now().Unix() {
		return session{}, errSessionExpired
	}
	return s, nil
}

func signPayload(payload string) (string, error) {
	if appConfig == nil || appConfig.App.SecretKey == "" {
		return "", errAuthConfigMissing
	}
	mac := hmac.New(sha256.New, []byte(appConfig.App.SecretKey))
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}
