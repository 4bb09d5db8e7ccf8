package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/adarshmishra-tech/monitor-trading-infra/logger"
	"github.com/adarshmishra-tech/monitor-trading-infra/types"
	"github.com/adarshmishra-tech/monitor-trading-infra/util"
)

// ErrNoStartTLS is returned when the relay cannot upgrade the connection.
// Credentials are never sent in that case.
var ErrNoStartTLS = errors.New("smtp server does not support STARTTLS")

// SMTPConfig configures SMTPNotifier.
type SMTPConfig struct {
	Server   string
	Port     int
	Sender   string
	Password string

	// TLSConfig overrides the client TLS settings used after STARTTLS.
	TLSConfig *tls.Config
}

// SMTPNotifier sends plain-text mail through an authenticated relay.
type SMTPNotifier struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTPNotifier creates a notifier for the given relay.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, now: time.Now}
}

// Send dials the relay, upgrades with STARTTLS, authenticates and submits one message.
func (n *SMTPNotifier) Send(ctx context.Context, subject, body string, recipients []string) error {
	log := logger.WithComponent("smtp")
	if err := n.send(ctx, subject, body, recipients); err != nil {
		log.Error().
			Err(err).
			Str("subject", subject).
			Msg("Failed to send email")
		return &types.DeliveryError{Subject: subject, Err: err}
	}

	log.Info().
		Strs("recipients", recipients).
		Msg("Email alert sent: " + subject)
	return nil
}

func (n *SMTPNotifier) send(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return errors.New("no recipients")
	}

	addr := net.JoinHostPort(n.cfg.Server, strconv.Itoa(n.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, n.cfg.Server)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return ErrNoStartTLS
	}
	tlsCfg := n.cfg.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{ServerName: n.cfg.Server, MinVersion: tls.VersionTLS12}
	}
	if err := c.StartTLS(tlsCfg); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}

	if err := c.Auth(smtp.PlainAuth("", n.cfg.Sender, n.cfg.Password, n.cfg.Server)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Mail(n.cfg.Sender); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(n.buildMessage(subject, body, recipients)); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}
	return c.Quit()
}

// buildMessage renders a text/plain RFC 5322 message with CRLF line endings.
func (n *SMTPNotifier) buildMessage(subject, body string, recipients []string) []byte {
	domain := ""
	if i := strings.LastIndex(n.cfg.Sender, "@"); i >= 0 {
		domain = n.cfg.Sender[i+1:]
	}

	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", n.cfg.Sender)
	header("To", strings.Join(recipients, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", n.now().Format(time.RFC1123Z))
	header("Message-ID", util.MessageID(domain))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body = strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\r\n")
	}
	return b.Bytes()
}
