package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"time"

	gomail "github.com/emersion/go-message/mail"

	"github.com/opencatalog/catalog-notifier/internal/model"
)

// SMTPMailer implements Mailer over a plain SMTP relay, with either
// implicit TLS or STARTTLS depending on configuration.
type SMTPMailer struct {
	cfg model.SMTPConfig
}

// NewSMTPMailer creates an SMTP mailer from the given configuration.
func NewSMTPMailer(cfg model.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send builds an RFC 5322 message and delivers it. Transport failures are
// wrapped in MailerError.
func (m *SMTPMailer) Send(
	_ context.Context,
	displayName, email, subject, body string,
) error {
	msg, err := buildMessage(m.cfg, displayName, email, subject, body)
	if err != nil {
		return fmt.Errorf("building message for %s: %w", email, err)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port

	if m.cfg.TLS {
		if err := sendSMTPWithTLS(addr, m.cfg, email, msg); err != nil {
			return &MailerError{Recipient: email, Err: err}
		}
		return nil
	}

	if err := sendSMTPWithStartTLS(addr, m.cfg, email, msg); err != nil {
		return &MailerError{Recipient: email, Err: err}
	}
	return nil
}

// buildMessage renders the full RFC 5322 message: headers plus a plain-text
// inline body.
func buildMessage(
	cfg model.SMTPConfig,
	displayName, email, subject, body string,
) (string, error) {
	var b bytes.Buffer

	var h gomail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*gomail.Address{
		{Name: cfg.FromName, Address: cfg.From},
	})
	h.SetAddressList("To", []*gomail.Address{
		{Name: displayName, Address: email},
	})
	h.SetSubject(subject)

	w, err := gomail.CreateSingleInlineWriter(&b, h)
	if err != nil {
		return "", fmt.Errorf("creating message writer: %w", err)
	}

	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return "", fmt.Errorf("writing message body: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing message writer: %w", err)
	}

	return b.String(), nil
}

// sendSMTPWithTLS sends an email over an implicit TLS connection.
func sendSMTPWithTLS(
	addr string, cfg model.SMTPConfig,
	to, body string,
) error {
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if err := authenticate(client, cfg); err != nil {
		return err
	}

	return sendMailViaSMTPClient(client, cfg.From, to, body)
}

// sendSMTPWithStartTLS sends an email using STARTTLS.
func sendSMTPWithStartTLS(
	addr string, cfg model.SMTPConfig,
	to, body string,
) error {
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return fmt.Errorf("dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: cfg.Host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	if err := authenticate(client, cfg); err != nil {
		return err
	}

	return sendMailViaSMTPClient(client, cfg.From, to, body)
}

// authenticate performs PLAIN auth when a username is configured. Relays
// on a trusted network may not require authentication at all.
func authenticate(client *smtp.Client, cfg model.SMTPConfig) error {
	if cfg.Username == "" {
		return nil
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}
	return nil
}

// sendMailViaSMTPClient sends a message using an already-connected SMTP
// client.
func sendMailViaSMTPClient(
	client *smtp.Client, from, to, body string,
) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write([]byte(body)); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	return client.Quit()
}
