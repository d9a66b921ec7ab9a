package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/fleetconsole/internal/logging"
	"github.com/dmitrijs2005/fleetconsole/internal/server/models"
)

// ResetMailer delivers password reset tokens to users.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, user *models.User, token string) error
}

// LogMailer writes reset links to the log instead of sending mail. It is
// meant for development setups without an SMTP relay.
type LogMailer struct {
	log      logging.Logger
	linkBase string
}

// NewLogMailer returns a LogMailer that builds links as linkBase/<token>.
func NewLogMailer(log logging.Logger, linkBase string) *LogMailer {
	return &LogMailer{log: log, linkBase: strings.TrimRight(linkBase, "/")}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, user *models.User, token string) error {
	m.log.Info(ctx, "password reset link", "email", user.Email, "link", m.linkBase+"/"+url.PathEscape(token))
	return nil
}
