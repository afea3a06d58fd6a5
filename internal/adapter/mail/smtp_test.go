package mail

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

type capturedSend struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func newCapturingMailer(err error) (*SMTPMailer, *capturedSend) {
	captured := &capturedSend{}
	m := NewSMTPMailer("smtp.example.com", 2525, "user", "secret")
	m.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr, captured.from, captured.to, captured.msg = addr, from, to, msg
		return err
	}
	return m, captured
}

func TestSMTPMailer_SendMultipart(t *testing.T) {
	// Arrange
	m, captured := newCapturingMailer(nil)
	msg := entity.EmailMessage{
		To:      "sales@example.com",
		From:    "site@example.com",
		ReplyTo: "jane@acme.com",
		Subject: "New quote request from Jané (ACME)",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	}

	// Act
	err := m.Send(context.Background(), msg)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:2525", captured.addr)
	assert.Equal(t, "site@example.com", captured.from)
	assert.Equal(t, []string{"sales@example.com"}, captured.to)

	parsed, err := mail.ReadMessage(strings.NewReader(string(captured.msg)))
	require.NoError(t, err)
	assert.Equal(t, "jane@acme.com", parsed.Header.Get("Reply-To"))

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, msg.Subject, subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	var bodies []string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, _ := io.ReadAll(part)
		bodies = append(bodies, string(b))
	}
	assert.Equal(t, []string{"plain body", "<p>html body</p>"}, bodies)
}

func TestSMTPMailer_PlainTextOnly(t *testing.T) {
	m, captured := newCapturingMailer(nil)

	err := m.Send(context.Background(), entity.EmailMessage{To: "a@b.co", From: "c@d.co", Subject: "hi", Text: "line1\nline2"})

	require.NoError(t, err)
	raw := string(captured.msg)
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.Contains(t, raw, "line1\r\nline2")
	assert.NotContains(t, raw, "Reply-To")
}

func TestSMTPMailer_StripsHeaderInjection(t *testing.T) {
	m, captured := newCapturingMailer(nil)

	err := m.Send(context.Background(), entity.EmailMessage{
		To: "a@b.co", From: "c@d.co", Subject: "hello\r\nBcc: victim@example.com", Text: "x",
	})

	require.NoError(t, err)
	parsed, err := mail.ReadMessage(strings.NewReader(string(captured.msg)))
	require.NoError(t, err)
	assert.Empty(t, parsed.Header.Get("Bcc"))
}

func TestSMTPMailer_RelayError(t *testing.T) {
	m, _ := newCapturingMailer(errors.New("554 rejected"))

	err := m.Send(context.Background(), entity.EmailMessage{To: "a@b.co", From: "c@d.co", Text: "x"})

	assert.ErrorContains(t, err, "554 rejected")
}

func TestSMTPMailer_RequiresAddresses(t *testing.T) {
	m, _ := newCapturingMailer(nil)

	assert.Error(t, m.Send(context.Background(), entity.EmailMessage{From: "c@d.co"}))
}

func TestSMTPMailer_ContextCanceled(t *testing.T) {
	m, _ := newCapturingMailer(nil)
	release := make(chan struct{})
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}
	defer close(release)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, entity.EmailMessage{To: "a@b.co", From: "c@d.co", Text: "x"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDisabled(t *testing.T) {
	assert.ErrorIs(t, Disabled{}.Send(context.Background(), entity.EmailMessage{}), ErrMailDisabled)
}
