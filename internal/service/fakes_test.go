package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/Skotchmaster/inventory/internal/mailer"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/repo/repotest"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeImages struct {
	keys []string
	err  error
}

func (f *fakeImages) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type publishedEvent struct {
	topic string
	key   string
	event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event.(map[string]any)})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event["type"].(string))
	}
	return out
}

var errTransport = errors.New("transport down")

type testEnv struct {
	repo     *repo.GormRepo
	users    *UserService
	products *ProductService
	contact  *ContactService
	mail     *fakeMailer
	images   *fakeImages
	events   *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(repotest.InitTestDB(t))
	mail := &fakeMailer{}
	images := &fakeImages{}
	events := &fakePublisher{}

	return &testEnv{
		repo: r,
		users: &UserService{
			Repo:        r,
			Tokens:      tokens.NewIssuer([]byte("test-jwt-secret")),
			Mailer:      mail,
			Events:      events,
			FrontendURL: "https://app.example.com/",
			MailFrom:    "noreply@example.com",
		},
		products: &ProductService{
			Repo:   r,
			Images: images,
			Events: events,
		},
		contact: &ContactService{
			Mailer:       mail,
			SupportEmail: "support@example.com",
		},
		mail:   mail,
		images: images,
		events: events,
	}
}
