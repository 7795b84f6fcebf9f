// internal/api/auth/handlers.go
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/api/apiutil"
	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/config"
	appdb "github.com/codr1/CourtReserve/internal/db"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/ratelimit"
)

const resetTokenTTL = time.Hour

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, recipient, link string, expiresIn time.Duration)
}

var (
	queries     *dbgen.Queries
	store       *appdb.DB
	appConfig   *config.Config
	limiter     *ratelimit.Limiter
	mailer      ResetMailer
	queriesOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, cfg *config.Config, l *ratelimit.Limiter, m ResetMailer) {
	if database == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		store = database
		appConfig = cfg
		limiter = l
		mailer = m
	})
}

type userResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/auth/login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	q := loadQueries()
	if q == nil || appConfig == nil {
		logger.Error().Msg("Auth handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req loginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ip := ratelimit.GetClientIP(r, appConfig.App.TrustProxy)
	if limiter != nil {
		if result := limiter.CheckLogin(email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(r.Context(), "login", email, ip, result.Reason)
			writeTooManyRequests(w, result.RetryAfter)
			return
		}
	}

	user, err := q.GetUserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("Failed to load user for login")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if err != nil || !VerifyPassword(user.PasswordHash, req.Password) {
		if limiter != nil && limiter.RecordLoginFailure(email, ip) {
			logger.Warn().Str("email", ratelimit.MaskEmail(email)).Str("ip", ip).Msg("Login locked after repeated failures")
		}
		apiutil.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if limiter != nil {
		limiter.ResetLogin(email)
	}
	if err := SetSessionCookie(w, user.ID); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to create session")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("User logged in")
	_ = apiutil.WriteJSON(w, http.StatusOK, userResponse{ID: user.ID, Name: user.Name, Email: user.Email, IsAdmin: user.IsAdmin})
}

// POST /api/v1/auth/logout
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/auth/me
func HandleMe(w http.ResponseWriter, r *http.Request) {
	user := authz.UserFromContext(r.Context())
	if user == nil {
		apiutil.WriteServiceError(w, r, authz.ErrUnauthenticated)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, userResponse{ID: user.ID, Name: user.Name, Email: user.Email, IsAdmin: user.IsAdmin})
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// POST /api/v1/auth/password-reset
// Always answers 202 so the response does not reveal which emails exist.
func HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	q := loadQueries()
	if q == nil || appConfig == nil {
		logger.Error().Msg("Auth handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req passwordResetRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}

	accepted := func() {
		_ = apiutil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}

	ip := ratelimit.GetClientIP(r, appConfig.App.TrustProxy)
	if limiter != nil {
		if result := limiter.CheckPasswordReset(email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(r.Context(), "password_reset", email, ip, result.Reason)
			accepted()
			return
		}
	}

	user, err := q.GetUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Error().Err(err).Msg("Failed to load user for password reset")
		}
		accepted()
		return
	}

	token, hash, err := newResetToken()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate password reset token")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if _, err := q.CreatePasswordResetToken(r.Context(), dbgen.CreatePasswordResetTokenParams{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL).Truncate(time.Second),
	}); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to store password reset token")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if limiter != nil {
		limiter.RecordPasswordReset(email, ip)
	}

	if mailer != nil {
		mailer.SendPasswordReset(r.Context(), user.Email, resetLink(token), resetTokenTTL)
	}
	logger.Info().Int64("user_id", user.ID).Msg("Password reset requested")
	accepted()
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

var errInvalidResetToken = apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid or expired reset token"}

// POST /api/v1/auth/password-reset/confirm
func HandlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := loadDB()
	if database == nil {
		logger.Error().Msg("Auth handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req passwordResetConfirmRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		apiutil.WriteServiceError(w, r, apiutil.FieldError{Field: "token", Reason: "is required"})
		return
	}
	if len(req.Password) < minPasswordLength {
		apiutil.WriteServiceError(w, r, apiutil.FieldError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)})
		return
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var userID int64
	err = database.RunInTx(r.Context(), func(txdb *appdb.DB) error {
		record, err := txdb.Queries.GetPasswordResetTokenByHash(r.Context(), hashResetToken(token))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errInvalidResetToken
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load reset token", Err: err}
		}
		now := time.Now().UTC()
		if record.UsedAt.Valid || !record.ExpiresAt.After(now) {
			return errInvalidResetToken
		}

		if _, err := txdb.Queries.UpdateUserPassword(r.Context(), dbgen.UpdateUserPasswordParams{
			PasswordHash: passwordHash,
			ID:           record.UserID,
		}); err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to update password", Err: err}
		}
		if _, err := txdb.Queries.MarkPasswordResetTokenUsed(r.Context(), dbgen.MarkPasswordResetTokenUsedParams{
			UsedAt: sql.NullTime{Time: now.Truncate(time.Second), Valid: true},
			ID:     record.ID,
		}); err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to consume reset token", Err: err}
		}
		userID = record.UserID
		return nil
	})
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	logger.Info().Int64("user_id", userID).Msg("Password reset completed")
	w.WriteHeader(http.StatusNoContent)
}

func resetLink(token string) string {
	base := ""
	if appConfig != nil {
		base = strings.TrimRight(appConfig.App.BaseURL, "/")
	}
	return base + "/reset-password?token=" + url.QueryEscape(token)
}

func writeTooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	apiutil.WriteError(w, http.StatusTooManyRequests, "Too many attempts, please try again later")
}

func loadQueries() *dbgen.Queries {
	return queries
}

func loadDB() *appdb.DB {
	return store
}
