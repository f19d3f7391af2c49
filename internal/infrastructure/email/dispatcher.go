package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"regexp"
	"strconv"
	"strings"
	"time"

	"blackwallet.backend/internal/config"
	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/metrics"
	"go.uber.org/zap"
)

var ErrInvalidRecipient = errors.New("invalid email recipient")

// Dispatcher delivers a single plain-text message.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, body string) error
}

const defaultSMTPTimeout = 15 * time.Second

var sendMail = sendMailContext

// SMTPDispatcher sends through an SMTP relay with PLAIN auth when credentials are set.
// Each delivery is bounded by timeout and by the caller's ctx.
type SMTPDispatcher struct {
	addr    string
	host    string
	from    string
	auth    smtp.Auth
	timeout time.Duration
	now     func() time.Time
}

func NewSMTPDispatcher(cfg config.SMTPConfig) *SMTPDispatcher {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	return &SMTPDispatcher{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:    cfg.Host,
		from:    cfg.From,
		auth:    auth,
		timeout: timeout,
		now:     time.Now,
	}
}

func (d *SMTPDispatcher) Send(ctx context.Context, to, subject, body string) error {
	if to == "" || strings.ContainsAny(to, "\r\n") {
		return ErrInvalidRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	msg := buildMessage(d.from, to, subject, body, d.now())
	if err := sendMail(sendCtx, d.addr, d.host, d.auth, d.from, to, msg); err != nil {
		metrics.EmailDeliveries.WithLabelValues("failed").Inc()
		logger.Warn(ctx, "Email delivery failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	metrics.EmailDeliveries.WithLabelValues("sent").Inc()
	return nil
}

// sendMailContext is smtp.SendMail over a connection that honours ctx: the
// ctx deadline becomes the socket deadline and cancellation closes it.
func sendMailContext(ctx context.Context, addr, host string, auth smtp.Auth, from, to string, msg []byte) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from, to, subject, body string, at time.Time) []byte {
	subject = strings.NewReplacer("\r", " ", "\n", " ").Replace(subject)

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + at.UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

var approvalCodeParam = regexp.MustCompile(`(?i)([?&]code=)[^&\s]+`)

// redactCodes masks approval codes in links so a log reader cannot approve.
func redactCodes(body string) string {
	return approvalCodeParam.ReplaceAllString(body, "${1}REDACTED")
}

// LogDispatcher writes messages to the log instead of delivering them.
// Used when SMTP_HOST is unset. Approval codes are masked at info level;
// the full body only appears at debug level for local development.
type LogDispatcher struct{}

func (LogDispatcher) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return ErrInvalidRecipient
	}
	logger.Info(ctx, "Email (log only)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", redactCodes(body)),
	)
	logger.Debug(ctx, "Email body (unredacted)", zap.String("to", to), zap.String("body", body))
	metrics.EmailDeliveries.WithLabelValues("logged").Inc()
	return nil
}

// NewDispatcher picks SMTP when a host is configured.
func NewDispatcher(cfg config.SMTPConfig) Dispatcher {
	if cfg.Host == "" {
		return LogDispatcher{}
	}
	return NewSMTPDispatcher(cfg)
}
