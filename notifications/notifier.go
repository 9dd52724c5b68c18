package notifications

import (
	"context"
	"log"
)

type Recipient struct {
	Name  string
	Email string
}

// Template names understood by every Notifier implementation.
const (
	TemplateWelcome     = "welcome"
	TemplateMatchFound  = "match_found"
	TemplateClassJoined = "class_joined"
)

// Notifier delivers a transactional message. Callers treat delivery as
// best effort: a returned error is logged, never propagated into the
// primary operation.
type Notifier interface {
	Notify(ctx context.Context, to Recipient, template string, data map[string]any) error
}

// LogNotifier is the fallback when no email provider is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, to Recipient, template string, data map[string]any) error {
	subject, _, err := render(template, data)
	if err != nil {
		return err
	}
	log.Printf("Email client not configured, skipping send to %s: %s", to.Email, subject)
	return nil
}
