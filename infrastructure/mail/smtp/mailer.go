// Package smtp delivers newsletter mail over SMTP.
package smtp

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"storefront/application/newsletter"
	"storefront/config"
)

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer one SMTP submission per message
type Mailer struct {
	addr string
	auth smtp.Auth
	from *mail.Address
	send SendFunc
	now  func() time.Time
}

// New builds a mailer; credentials are optional for local relays
func New(cfg config.MailConfig) (*Mailer, error) {
	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("invalid mail.from %q: %w", cfg.From, err)
	}
	m := &Mailer{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from: from,
		send: smtp.SendMail,
		now:  time.Now,
	}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return m, nil
}

// WithSendFunc replaces the transport
func (m *Mailer) WithSendFunc(fn SendFunc) *Mailer {
	m.send = fn
	return m
}

func (m *Mailer) Send(ctx context.Context, msg newsletter.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	body := m.compose(to, msg)
	if err := m.send(m.addr, m.auth, m.from.Address, []string{to.Address}, body); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to.Address, err)
	}
	return nil
}

func (m *Mailer) compose(to *mail.Address, msg newsletter.Message) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", m.from.String())
	header("To", to.String())
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", m.now().UTC().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(normalizeNewlines(msg.HTML))
	return b.Bytes()
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

var _ newsletter.Mailer = (*Mailer)(nil)
