package service

import (
	"context"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/mailer"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/transport"
)

type ContactService struct {
	Mailer       Mailer
	SupportEmail string
}

func (s *ContactService) ContactUs(ctx context.Context, user *models.User, req transport.ContactRequest) error {
	l := logging.FromContext(ctx).With("svc", "contact.send")

	if blank(req.Subject) || blank(req.Message) {
		return validation("Please add a subject and a message")
	}

	msg := mailer.Message{
		From:    user.Email,
		To:      s.SupportEmail,
		ReplyTo: user.Email,
		Subject: req.Subject,
		HTML:    req.Message,
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		l.Error("contact_failed", "status", 500, "reason", "email not sent", "user_id", user.ID.String(), "error", err)
		return serverError("Email not sent, please try again", err)
	}

	l.Info("contact_sent", "user_id", user.ID.String())
	return nil
}
