// Package mailer composes MIME messages and relays them through an SMTP server.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

var ErrNotConfigured = errors.New("mailer: smtp is not configured")

const defaultTimeout = 10 * time.Second

type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	// Sender is the envelope sender; relays that authenticate usually reject any other.
	Sender  string
	Timeout time.Duration

	dial      func(ctx context.Context, network, addr string) (net.Conn, error)
	tlsConfig *tls.Config
}

func NewSMTPMailer(host string, port int, username, password, sender string, timeout time.Duration) *SMTPMailer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Sender:   sender,
		Timeout:  timeout,
		dial:     (&net.Dialer{}).DialContext,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.Host == "" {
		return ErrNotConfigured
	}

	body, err := Compose(msg, time.Now())
	if err != nil {
		return err
	}

	from := m.Sender
	if from == "" {
		from = msg.From
	}

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	if err := m.deliver(ctx, from, msg.To, body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("mailer: send: %w", ctxErr)
		}
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

// deliver runs one SMTP session over STARTTLS. The socket is closed as soon as ctx is done,
// and each command is also bounded by m.Timeout.
func (m *SMTPMailer) deliver(ctx context.Context, from, to string, body []byte) error {
	dial := m.dial
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	conn, err := dial(ctx, "tcp", net.JoinHostPort(m.Host, strconv.Itoa(m.Port)))
	if err != nil {
		return err
	}
	// the client resets socket deadlines per command, so cancellation closes the socket instead
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	tlsConfig := m.tlsConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: m.Host}
	}
	c, err := smtp.NewClientStartTLS(conn, tlsConfig)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()
	c.CommandTimeout = m.Timeout
	c.SubmissionTimeout = m.Timeout

	if m.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", m.Username, m.Password)); err != nil {
			return err
		}
	}
	if err := c.SendMail(from, []string{to}, bytes.NewReader(body)); err != nil {
		return err
	}
	return c.Quit()
}

// Compose renders msg as a single-part text/html RFC 5322 message.
func Compose(msg Message, now time.Time) ([]byte, error) {
	if msg.From == "" || msg.To == "" {
		return nil, errors.New("mailer: from and to are required")
	}

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{{Address: msg.From}})
	h.SetAddressList("To", []*mail.Address{{Address: msg.To}})
	if msg.ReplyTo != "" {
		h.SetAddressList("Reply-To", []*mail.Address{{Address: msg.ReplyTo}})
	}
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("mailer: message id: %w", err)
	}
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("mailer: create writer: %w", err)
	}
	if _, err := io.WriteString(w, msg.HTML); err != nil {
		return nil, fmt.Errorf("mailer: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("mailer: close writer: %w", err)
	}
	return buf.Bytes(), nil
}
