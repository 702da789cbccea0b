package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

// ContactDetails is what a visitor submitted through the contact form.
type ContactDetails struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	SentAt  time.Time
}

// PasswordReset builds the recovery mail for the account at to. link is the absolute reset URL.
func PasswordReset(to, name, link string, ttl time.Duration) (Message, error) {
	data := map[string]any{
		"Name":    name,
		"Link":    link,
		"Minutes": int(ttl / time.Minute),
	}
	return render(Message{
		To:      to,
		ToName:  name,
		Subject: "Restablecimiento de contraseña - Lighthouse Restaurant",
	}, "password_reset", data)
}

// ContactNotification builds the staff notification for a contact form submission. Replies go to the visitor.
func ContactNotification(inbox string, c ContactDetails) (Message, error) {
	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		subject = "Sin asunto"
	}
	return render(Message{
		To:      inbox,
		ReplyTo: c.Email,
		Subject: fmt.Sprintf("Nuevo mensaje de contacto: %s", subject),
	}, "contact_notification", c)
}

func render(msg Message, name string, data any) (Message, error) {
	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("mail template %s: %w", name, err)
	}
	if err := textTemplates.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("mail template %s: %w", name, err)
	}
	msg.HTML = html.String()
	msg.Text = text.String()
	return msg, nil
}
