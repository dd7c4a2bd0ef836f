package service

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/events"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// mobilePattern matches Indian mobile numbers as used for field logins.
var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// CapabilityInvalidator drops cached capability resolutions.
type CapabilityInvalidator interface {
	Invalidate(ctx context.Context)
}

func normalizeMobile(raw string) (string, error) {
	mobile := strings.TrimSpace(raw)
	if !mobilePattern.MatchString(mobile) {
		return "", apperrors.NewValidationError("mobile number must be 10 digits starting with 6-9", map[string]any{"mobile_number": raw})
	}
	return mobile, nil
}

func actorOf(p access.Principal) events.Actor {
	return events.Actor{Kind: string(p.Kind), ID: p.ID, Name: p.Name}
}

func actorRef(p access.Principal) *string {
	if p.ID == "" {
		return nil
	}
	id := p.ID
	return &id
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func preview(body string) string {
	const limit = 80
	body = strings.TrimSpace(body)
	if len([]rune(body)) <= limit {
		return body
	}
	return string([]rune(body)[:limit]) + "..."
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func invalidate(ctx context.Context, inv CapabilityInvalidator) {
	if inv != nil {
		inv.Invalidate(ctx)
	}
}
