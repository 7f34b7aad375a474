package notify

import (
	"context"
	"errors"

	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

// Router sends codes for mobile identifiers through sms and for emails through email.
type Router struct {
	sms   ports.CodeSender
	email ports.CodeSender
}

func NewRouter(sms, email ports.CodeSender) ports.CodeSender {
	return &Router{sms: sms, email: email}
}

func (r *Router) Send(ctx context.Context, identifier domain.Identifier, code string) error {
	sender := r.email
	if identifier.IsMobile() {
		sender = r.sms
	}
	if sender == nil {
		return errors.New("no sender configured for identifier")
	}
	return sender.Send(ctx, identifier, code)
}

// LogSender writes codes to the application log. It stands in for SMS and email
// delivery in development.
type LogSender struct{}

func NewLogSender() ports.CodeSender {
	return LogSender{}
}

func (LogSender) Send(_ context.Context, identifier domain.Identifier, code string) error {
	utils.Logger.WithField("identifier", identifier.String()).Infof("One-time code: %s", code)
	return nil
}
