package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/transport"
)

func resetTokenFromMail(t *testing.T, env *testEnv) string {
	t.Helper()
	msg := env.mail.last()
	_, rest, ok := strings.Cut(msg.HTML, "https://app.example.com/resetpassword/")
	require.True(t, ok, "reset link missing from mail body")
	token, _, ok := strings.Cut(rest, `"`)
	require.True(t, ok)
	return token
}

func TestForgotPassword_SendsLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := register(t, env, "forgot@example.com", "secret1")

	require.NoError(t, env.users.ForgotPassword(ctx, transport.ForgotPasswordRequest{Email: "forgot@example.com"}))

	msg := env.mail.last()
	assert.Equal(t, "forgot@example.com", msg.To)
	assert.Equal(t, "noreply@example.com", msg.From)
	assert.Equal(t, "Password Reset Request", msg.Subject)

	token := resetTokenFromMail(t, env)
	assert.True(t, strings.HasSuffix(token, reg.User.ID.String()))
}

func TestForgotPassword_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	err := env.users.ForgotPassword(context.Background(), transport.ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "User does not exist", Message(err))
	assert.Empty(t, env.mail.sent)
}

func TestForgotPassword_MailFailure(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "mailfail@example.com", "secret1")
	env.mail.err = errTransport

	err := env.users.ForgotPassword(context.Background(), transport.ForgotPasswordRequest{Email: "mailfail@example.com"})
	assert.ErrorIs(t, err, ErrServer)
	assert.ErrorIs(t, err, errTransport)
	assert.Equal(t, "Email not sent, please try again", Message(err))
}

func TestResetPassword_WithinTTL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "reset@example.com", "secret1")

	require.NoError(t, env.users.ForgotPassword(ctx, transport.ForgotPasswordRequest{Email: "reset@example.com"}))
	token := resetTokenFromMail(t, env)

	require.NoError(t, env.users.ResetPassword(ctx, token, transport.ResetPasswordRequest{Password: "brand-new"}))

	_, err := env.users.Login(ctx, transport.LoginRequest{Email: "reset@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = env.users.Login(ctx, transport.LoginRequest{Email: "reset@example.com", Password: "brand-new"})
	assert.NoError(t, err)

	assert.Contains(t, env.events.types(), "password_reset")
}

func TestResetPassword_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "once@example.com", "secret1")

	require.NoError(t, env.users.ForgotPassword(ctx, transport.ForgotPasswordRequest{Email: "once@example.com"}))
	token := resetTokenFromMail(t, env)

	require.NoError(t, env.users.ResetPassword(ctx, token, transport.ResetPasswordRequest{Password: "first-new"}))

	err := env.users.ResetPassword(ctx, token, transport.ResetPasswordRequest{Password: "second-new"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Invalid or expired token", Message(err))
}

func TestResetPassword_ConcurrentSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "race@example.com", "secret1")

	require.NoError(t, env.users.ForgotPassword(ctx, transport.ForgotPasswordRequest{Email: "race@example.com"}))
	token := resetTokenFromMail(t, env)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = env.users.ResetPassword(ctx, token, transport.ResetPasswordRequest{Password: fmt.Sprintf("parallel-%d", i)})
		}()
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			assert.Equal(t, -1, winner, "token accepted more than once")
			winner = i
			continue
		}
		assert.ErrorIs(t, err, ErrNotFound)
	}
	require.NotEqual(t, -1, winner, "no attempt succeeded")

	for i := range attempts {
		_, err := env.users.Login(ctx, transport.LoginRequest{Email: "race@example.com", Password: fmt.Sprintf("parallel-%d", i)})
		if i == winner {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, ErrUnauthorized)
		}
	}

	resets := 0
	for _, typ := range env.events.types() {
		if typ == "password_reset" {
			resets++
		}
	}
	assert.Equal(t, 1, resets)
}

func TestResetPassword_NewRequestInvalidatesOld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "twice@example.com", "secret1")

	require.NoError(t, env.users.ForgotPassword(ctx, transport.ForgotPasswordRequest{Email: "twice@example.com"}))
	first := resetTokenFromMail(t, env)
	require.NoError(t, env.users.ForgotPassword(ctx, transport.ForgotPasswordRequest{Email: "twice@example.com"}))
	second := resetTokenFromMail(t, env)
	require.NotEqual(t, first, second)

	err := env.users.ResetPassword(ctx, first, transport.ResetPasswordRequest{Password: "brand-new"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, env.users.ResetPassword(ctx, second, transport.ResetPasswordRequest{Password: "brand-new"}))
}

func TestResetPassword_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "expired@example.com", "secret1")

	issuedAt := time.Now().Add(-ResetTokenTTL - time.Minute)
	env.users.Now = func() time.Time { return issuedAt }
	require.NoError(t, env.users.ForgotPassword(ctx, transport.ForgotPasswordRequest{Email: "expired@example.com"}))
	token := resetTokenFromMail(t, env)
	env.users.Now = nil

	err := env.users.ResetPassword(ctx, token, transport.ResetPasswordRequest{Password: "brand-new"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.users.Login(ctx, transport.LoginRequest{Email: "expired@example.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	err := env.users.ResetPassword(context.Background(), "deadbeef", transport.ResetPasswordRequest{Password: "brand-new"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword_ShortPassword(t *testing.T) {
	env := newTestEnv(t)

	err := env.users.ResetPassword(context.Background(), "deadbeef", transport.ResetPasswordRequest{Password: "abc"})
	assert.ErrorIs(t, err, ErrValidation)
}
