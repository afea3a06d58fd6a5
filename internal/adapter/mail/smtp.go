// Package mail delivers lead notifications.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/repository"
)

// ErrMailDisabled is returned when no transport is configured
var ErrMailDisabled = repository.ErrMailDisabled

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends through an SMTP relay with PLAIN auth when credentials are set
type SMTPMailer struct {
	addr string
	host string
	auth smtp.Auth
	send sendFunc
	now  func() time.Time
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		host: host,
		auth: auth,
		send: smtp.SendMail,
		now:  time.Now,
	}
}

// Send blocks until the relay accepts the message or ctx is done. The SMTP
// exchange itself cannot be interrupted, so on cancellation it finishes in the
// background.
func (m *SMTPMailer) Send(ctx context.Context, msg entity.EmailMessage) error {
	if msg.To == "" || msg.From == "" {
		return errors.New("mail: from and to are required")
	}

	body, err := m.compose(msg)
	if err != nil {
		return fmt.Errorf("failed to compose email: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.send(m.addr, m.auth, msg.From, []string{msg.To}, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email via %s: %w", m.addr, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("email send interrupted: %w", ctx.Err())
	}
}

// compose builds an RFC 5322 message; multipart/alternative when HTML is present
func (m *SMTPMailer) compose(msg entity.EmailMessage) ([]byte, error) {
	var buf bytes.Buffer

	headers := []struct{ key, value string }{
		{"From", msg.From},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject))},
		{"Date", m.now().Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), m.host)},
		{"MIME-Version", "1.0"},
	}
	if msg.ReplyTo != "" {
		headers = append(headers, struct{ key, value string }{"Reply-To", msg.ReplyTo})
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.key, headerValue(h.value))
	}

	if msg.HTML == "" {
		buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		buf.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
		buf.WriteString(crlf(msg.Text))
		return buf.Bytes(), nil
	}

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", writer.Boundary())

	parts := []struct{ contentType, body string }{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write([]byte(crlf(p.body))); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// headerValue drops line breaks so submitted names cannot inject headers
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func crlf(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}
