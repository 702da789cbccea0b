// Package mail composes and delivers the site's transactional mail over SMTP using go-mail.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"strconv"
	"time"

	gomail "github.com/wneessen/go-mail"

	"lighthouse-restaurant/backend/internal/config"
)

// ErrNotConfigured is returned by Send when SMTP credentials are missing.
var ErrNotConfigured = errors.New("mail: smtp credentials not configured")

const (
	codeNotConfigured = "ECONFIG"
	codeMessage       = "EMESSAGE"
	sendTimeout       = 15 * time.Second
)

// Message is a single outgoing mail with an HTML body and a plain-text alternative.
type Message struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Error is a delivery failure carrying a provider diagnostic code (an SMTP status like "535" or a local
// code like "ECONFIG"). The wrapped error holds provider details and must only be logged.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("mail: %v", e.Err)
	}
	return fmt.Sprintf("mail: %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode extracts the diagnostic code from a delivery error, or "" when none is known.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var me *Error
	if errors.As(err, &me) && me.Code != "" {
		return me.Code
	}
	var coded interface{ ErrorCode() int }
	if errors.As(err, &coded) && coded.ErrorCode() > 0 {
		return strconv.Itoa(coded.ErrorCode())
	}
	var tp *textproto.Error
	if errors.As(err, &tp) {
		return strconv.Itoa(tp.Code)
	}
	return ""
}

// SMTPSender sends mail through an authenticated SMTP relay.
type SMTPSender struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	from     string
	fromName string
}

// NewSMTPSender returns a sender configured from cfg. Delivery fails with ErrNotConfigured when
// credentials are missing, so the site still starts without mail.
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.EmailHost,
		port:     cfg.EmailPort,
		secure:   cfg.EmailSecure,
		user:     cfg.EmailUser,
		password: cfg.EmailPassword,
		from:     cfg.EmailFrom,
		fromName: cfg.EmailFromName,
	}
}

// Send builds msg and delivers it in a single dial. Errors are *Error.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.user == "" || s.password == "" {
		return &Error{Code: codeNotConfigured, Err: ErrNotConfigured}
	}
	m, err := s.build(msg)
	if err != nil {
		return &Error{Code: codeMessage, Err: err}
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.user),
		gomail.WithPassword(s.password),
		gomail.WithTimeout(sendTimeout),
	}
	if s.secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return &Error{Code: codeNotConfigured, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return &Error{Code: ErrorCode(err), Err: err}
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if msg.ToName != "" {
		if err := m.AddToFormat(msg.ToName, msg.To); err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
	} else if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		m.AddAlternativeString(gomail.TypeTextPlain, msg.Text)
	}
	return m, nil
}
