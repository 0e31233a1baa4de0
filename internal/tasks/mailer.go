package tasks

import (
	"context" // Delivery context
	"fmt"     // Error wrapping
	"sync"    // Serialises SMTP sessions

	"github.com/sirupsen/logrus"  // Logging
	"github.com/wneessen/go-mail" // SMTP client
)

// Message is a plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through an SMTP relay
type SMTPMailer struct {
	mu     sync.Mutex
	client *mail.Client
	from   string
}

// NewSMTPMailer configures a relay client. Auth is only enabled when a user is given.
func NewSMTPMailer(host string, port int, user, pass, from string) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(pass),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: from}, nil
}

// Send delivers one message
func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.DialAndSendWithContext(ctx, m)
}

// ConsoleMailer writes messages to the log instead of sending them
type ConsoleMailer struct {
	From string
}

// Send logs the message
func (c ConsoleMailer) Send(_ context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"from":    c.From,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}
