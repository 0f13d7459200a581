package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/satwatch/boletin-monitor/internal/models"
)

// Notifier delivers the summary of a run that produced keyword matches.
type Notifier interface {
	Notify(updates []models.Update) error
}

// EmailNotifier sends the summary as a multipart (plain + HTML) email to a
// single recipient over authenticated SMTP submission with STARTTLS.
type EmailNotifier struct {
	Host      string
	Port      int
	Sender    string
	Recipient string
	Password  string
	Subject   string
}

// Notify composes and sends the summary email. An empty update list is a
// no-op: no email is sent for a run without matches. A delivery failure is
// returned as a *NotificationError.
func (n *EmailNotifier) Notify(updates []models.Update) error {
	if len(updates) == 0 {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.Sender)
	msg.SetHeader("To", n.Recipient)
	msg.SetHeader("Subject", n.Subject)
	msg.SetBody("text/plain", plainBody(updates))
	msg.AddAlternative("text/html", htmlBody(updates))

	// The dialer upgrades the port 587 connection with STARTTLS before
	// authenticating.
	dialer := gomail.NewDialer(n.Host, n.Port, n.Sender, n.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}

func plainBody(updates []models.Update) string {
	var b strings.Builder
	b.WriteString("Se encontraron actualizaciones en los boletines técnicos del SAT:\n\n")
	for _, u := range updates {
		fmt.Fprintf(&b, "- %s: %s\n", u.PDF, strings.Join(u.Keywords, ", "))
		fmt.Fprintf(&b, "  URL: %s\n", u.URL)
		fmt.Fprintf(&b, "  Procesado: %s\n\n", u.ProcessedAt.Format(time.RFC3339))
	}
	return b.String()
}

func htmlBody(updates []models.Update) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	b.WriteString("<h2>Actualizaciones en Boletines Técnicos del SAT</h2>\n")
	b.WriteString("<p>Se encontraron las siguientes actualizaciones:</p>\n<ul>\n")
	for _, u := range updates {
		fmt.Fprintf(&b, "<li><strong>%s</strong><br>\n", html.EscapeString(u.PDF))
		fmt.Fprintf(&b, "Palabras clave: %s<br>\n", html.EscapeString(strings.Join(u.Keywords, ", ")))
		fmt.Fprintf(&b, "<a href=%q>Ver documento</a><br>\n", u.URL)
		fmt.Fprintf(&b, "Procesado: %s</li>\n", u.ProcessedAt.Format(time.RFC3339))
	}
	b.WriteString("</ul>\n</body></html>\n")
	return b.String()
}
