package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/mailer"
	"github.com/Skotchmaster/inventory/internal/models"
)

const (
	TopicUserEvents    = "user_events"
	TopicProductEvents = "product_events"
)

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type ImageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Indexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SearchProducts(ctx context.Context, owner uuid.UUID, q string, from, size int) (int64, []models.Product, error)
}
