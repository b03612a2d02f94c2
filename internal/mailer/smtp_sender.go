package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

// ErrHardBounce marks a permanent SMTP rejection (invalid mailbox, blocked
// address). Callers record these as bounced rather than retrying.
var ErrHardBounce = errors.New("email hard bounced")

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender is the transactional email transport contract.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	client        *mail.Client
	senderName    string
	senderAddress string
}

func NewSMTPSender(host string, port int, username, password, senderName, senderAddress string) (*SMTPSender, error) {
	client, err := mail.NewClient(host, mail.WithPort(port), mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username), mail.WithPassword(password))
	if err != nil {
		return nil, err
	}
	if err = client.DialWithContext(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	return &SMTPSender{
		client:        client,
		senderName:    senderName,
		senderAddress: senderAddress,
	}, nil
}

func (sender *SMTPSender) Send(ctx context.Context, message Message) error {
	msg := mail.NewMsg()

	if err := msg.FromFormat(sender.senderName, sender.senderAddress); err != nil {
		return fmt.Errorf("failed to set From address: %w", err)
	}

	msg.Subject(message.Subject)

	if err := msg.To(message.To); err != nil {
		// An unparseable recipient address can never be delivered.
		return fmt.Errorf("%w: %v", ErrHardBounce, err)
	}

	msg.SetBodyString(mail.TypeTextPlain, message.Text)
	if message.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, message.HTML)
	}

	if err := sender.client.DialAndSendWithContext(ctx, msg); err != nil {
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) && !sendErr.IsTemp() {
			return fmt.Errorf("%w: %v", ErrHardBounce, err)
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
