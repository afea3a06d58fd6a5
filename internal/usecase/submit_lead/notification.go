package submit_lead

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/form"
)

// Recipients addresses the internal notification
type Recipients struct {
	From string
	To   string
}

type field struct {
	label string
	value string
}

func contactEmail(sub entity.ContactSubmission, meta entity.SubmissionMeta, to Recipients) entity.EmailMessage {
	fields := []field{
		{"Name", sub.Name},
		{"Email", sub.Email},
	}
	return entity.EmailMessage{
		To:      to.To,
		From:    to.From,
		ReplyTo: sub.Email,
		Subject: fmt.Sprintf("New contact form submission from %s", sub.Name),
		Text:    textBody(fields, sub.Message, meta),
		HTML:    htmlBody("New contact form submission", fields, sub.Message, meta),
	}
}

func quoteEmail(sub entity.QuoteSubmission, meta entity.SubmissionMeta, to Recipients) entity.EmailMessage {
	fields := []field{
		{"Name", sub.Name},
		{"Company", sub.Company},
		{"Email", sub.Email},
		{"Phone", sub.Phone},
		{"Service type", sub.ServiceType},
	}
	if meta.ElapsedMs != nil {
		fields = append(fields, field{"Time on form", (time.Duration(*meta.ElapsedMs) * time.Millisecond).String()})
	}
	if meta.FastSubmit != nil && *meta.FastSubmit {
		fields = append(fields, field{"Flag", "fast submit"})
	}

	return entity.EmailMessage{
		To:      to.To,
		From:    to.From,
		ReplyTo: sub.Email,
		Subject: fmt.Sprintf("New quote request from %s (%s)", sub.Name, sub.Company),
		Text:    textBody(fields, sub.Message, meta),
		HTML:    htmlBody("New quote request", fields, sub.Message, meta),
	}
}

func textBody(fields []field, message string, meta entity.SubmissionMeta) string {
	var b strings.Builder
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n\n", message)
	writeMeta(&b, meta, func(s string) string { return s })
	return b.String()
}

// htmlBody escapes every submitted value; message line breaks become <br>
func htmlBody(title string, fields []field, message string, meta entity.SubmissionMeta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>\n<table>\n", form.EscapeHTML(title))
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>\n", form.EscapeHTML(f.label), form.EscapeHTML(f.value))
	}
	b.WriteString("</table>\n<h3>Message</h3>\n<p>")
	b.WriteString(strings.ReplaceAll(form.EscapeHTML(message), "\n", "<br>\n"))
	b.WriteString("</p>\n<p style=\"color:#666;font-size:12px\">")
	writeMeta(&b, meta, form.EscapeHTML)
	b.WriteString("</p>\n")
	return b.String()
}

func writeMeta(b *strings.Builder, meta entity.SubmissionMeta, escape func(string) string) {
	ip := meta.IP
	if ip == "" {
		ip = "unknown"
	}
	fmt.Fprintf(b, "IP: %s\n", escape(ip))
	if meta.UserAgent != "" {
		fmt.Fprintf(b, "User-Agent: %s\n", escape(meta.UserAgent))
	}
	fmt.Fprintf(b, "Submitted: %s\n", meta.Timestamp.UTC().Format(time.RFC3339))
	if meta.ElapsedMs != nil {
		fmt.Fprintf(b, "Elapsed ms: %s\n", strconv.FormatInt(*meta.ElapsedMs, 10))
	}
}
