package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/hash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/tokens"
	"github.com/Skotchmaster/inventory/internal/transport"
)

const publishTimeout = 5 * time.Second

type UserService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Mailer Mailer
	Events Publisher

	FrontendURL string
	MailFrom    string
	ResetTTL    time.Duration
	Now         func() time.Time
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func publish(ctx context.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(user.ID.String())
	if err != nil {
		return nil, serverError("Could not create session", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	email := normalizeEmail(req.Email)
	if blank(req.Name) || email == "" || req.Password == "" {
		return nil, validation("Please fill in all required fields")
	}
	if !validEmail(email) {
		return nil, validation("Please enter a valid email")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, serverError("Could not register user", err)
	}
	if taken {
		l.Warn("register_failed", "status", 400, "reason", "email already registered")
		return nil, conflict("User already exists")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, serverError("Could not register user", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    email,
		Password: pwHash,
		Photo:    models.DefaultPhoto,
		Phone:    models.DefaultPhone,
		Bio:      models.DefaultBio,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, conflict("User already exists")
		}
		return nil, serverError("Could not register user", err)
	}

	res, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, user.ID.String(), map[string]any{
		"type":   "user_registered",
		"userID": user.ID.String(),
		"email":  user.Email,
	})
	l.Info("register_success", "user_id", user.ID.String())
	return res, nil
}

func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "user.login")

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, validation("Please enter email and password")
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("User not found, please sign up")
		}
		return nil, serverError("Could not log in", err)
	}

	if !hash.CheckPassword(user.Password, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID.String())
		return nil, unauthorized("Invalid email or password")
	}

	res, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, user.ID.String(), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID.String(),
	})
	return res, nil
}

// LoginStatus never fails: a missing, malformed or expired token is simply "not logged in".
func (s *UserService) LoginStatus(token string) bool {
	if token == "" {
		return false
	}
	_, err := s.Tokens.Verify(token)
	return err == nil
}

// Authenticate resolves the user behind a verified session subject.
func (s *UserService) Authenticate(ctx context.Context, subject string) (*models.User, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, unauthorized("Not authorized, please login")
	}
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, unauthorized("User not found")
		}
		return nil, serverError("Could not load user", err)
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, user *models.User, req transport.UpdateUserRequest) (*models.User, error) {
	updated := *user
	if req.Name != nil {
		if blank(*req.Name) {
			return nil, validation("Name cannot be empty")
		}
		updated.Name = *req.Name
	}
	if req.Phone != nil {
		updated.Phone = *req.Phone
	}
	if req.Bio != nil {
		if len([]rune(*req.Bio)) > models.MaxBioLength {
			return nil, validation("Bio must not be more than 300 characters")
		}
		updated.Bio = *req.Bio
	}
	if req.Photo != nil {
		updated.Photo = *req.Photo
	}

	if err := s.Repo.UpdateProfile(ctx, &updated); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, serverError("Could not update user", err)
	}
	return &updated, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req transport.ChangePasswordRequest) error {
	l := logging.FromContext(ctx).With("svc", "user.change_password")

	if req.OldPassword == "" || req.NewPassword == "" {
		return validation("Please add old and new password")
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("User not found, please sign up")
		}
		return serverError("Could not change password", err)
	}

	if !hash.CheckPassword(user.Password, req.OldPassword) {
		l.Warn("change_password_failed", "status", 401, "reason", "old password mismatch")
		return unauthorized("Old password is incorrect")
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return serverError("Could not change password", err)
	}
	if err := s.Repo.UpdatePassword(ctx, user.ID, pwHash); err != nil {
		return serverError("Could not change password", err)
	}

	l.Info("change_password_success", "user_id", user.ID.String())
	return nil
}
