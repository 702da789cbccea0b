package domain

import (
	"errors"
	"testing"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want error
	}{
		{"ok", Message{Name: "Ana", Email: "ana@example.com", Body: "Reserva para 4"}, nil},
		{"missing body", Message{Name: "Ana", Email: "ana@example.com"}, ErrMissingFields},
		{"missing name", Message{Email: "ana@example.com", Body: "x"}, ErrMissingFields},
		{"bad email", Message{Name: "Ana", Email: "not-an-email", Body: "x"}, ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.msg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMessage_Normalize(t *testing.T) {
	m := Message{Name: " Ana ", Email: " ana@example.com\n", Body: "\thola "}
	m.Normalize()
	if m.Name != "Ana" || m.Email != "ana@example.com" || m.Body != "hola" {
		t.Errorf("Normalize = %+v", m)
	}
}
