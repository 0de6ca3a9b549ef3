package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailNotifier sends notifications as plain-text email from the
// authenticated user's account.
type GmailNotifier struct {
	svc       *gmail.Service
	recipient string
}

func NewGmailNotifier(ctx context.Context, client *http.Client, recipient string) (*GmailNotifier, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return &GmailNotifier{svc: svc, recipient: recipient}, nil
}

func (n *GmailNotifier) Notify(ctx context.Context, subject, body string) error {
	raw := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		n.recipient, subject, body)

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}
	if _, err := n.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
