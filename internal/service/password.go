package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/inventory/internal/hash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/mailer"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/transport"
)

const (
	ResetTokenTTL    = 30 * time.Minute
	resetTokenLength = 32
)

func (s *UserService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return ResetTokenTTL
}

func (s *UserService) resetURL(token string) string {
	return strings.TrimRight(s.FrontendURL, "/") + "/resetpassword/" + token
}

// ForgotPassword mails a single-use reset link. Only the digest of the token is stored.
func (s *UserService) ForgotPassword(ctx context.Context, req transport.ForgotPasswordRequest) error {
	l := logging.FromContext(ctx).With("svc", "user.forgot_password")

	email := normalizeEmail(req.Email)
	if email == "" {
		return validation("Please enter your email")
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("User does not exist")
		}
		return serverError("Could not process request", err)
	}

	random, err := hash.RandomHex(resetTokenLength)
	if err != nil {
		return serverError("Could not process request", err)
	}
	plain := random + user.ID.String()

	now := s.now()
	tok := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash.Sha256Hex(plain),
		CreatedAt: now,
		ExpiresAt: now.Add(s.resetTTL()),
	}
	if err := s.Repo.ReplaceResetToken(ctx, tok); err != nil {
		return serverError("Could not process request", err)
	}

	msg := mailer.PasswordReset(s.MailFrom, user.Email, user.Name, s.resetURL(plain))
	if err := s.Mailer.Send(ctx, msg); err != nil {
		l.Error("forgot_password_failed", "status", 500, "reason", "email not sent", "user_id", user.ID.String(), "error", err)
		return serverError("Email not sent, please try again", err)
	}

	l.Info("forgot_password_sent", "user_id", user.ID.String())
	return nil
}

// ResetPassword consumes a reset token. Unknown and expired tokens are indistinguishable to the caller.
func (s *UserService) ResetPassword(ctx context.Context, token string, req transport.ResetPasswordRequest) error {
	l := logging.FromContext(ctx).With("svc", "user.reset_password")

	if req.Password == "" {
		return validation("Please enter a new password")
	}
	if err := validatePassword(req.Password); err != nil {
		return err
	}
	if token == "" {
		return notFound("Invalid or expired token")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return serverError("Could not reset password", err)
	}

	userID, err := s.Repo.ConsumeResetToken(ctx, hash.Sha256Hex(token), s.now(), pwHash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("reset_password_failed", "status", 404, "reason", "invalid or expired token")
			return notFound("Invalid or expired token")
		}
		return serverError("Could not reset password", err)
	}

	publish(ctx, s.Events, TopicUserEvents, userID.String(), map[string]any{
		"type":   "password_reset",
		"userID": userID.String(),
	})
	l.Info("reset_password_success", "user_id", userID.String())
	return nil
}
