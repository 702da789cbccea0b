// Package domain defines messages left through the public contact form.
package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrMissingFields = errors.New("name, email and message are required")
	ErrInvalidEmail  = errors.New("invalid email address")
)

// Message is a contact form submission. New messages are unread.
type Message struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Subject   string
	Body      string
	Read      bool
	CreatedAt time.Time
}

// Normalize trims every field.
func (m *Message) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Body = strings.TrimSpace(m.Body)
}

// Validate reports whether the message can be stored.
func (m *Message) Validate() error {
	if m.Name == "" || m.Email == "" || m.Body == "" {
		return ErrMissingFields
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
