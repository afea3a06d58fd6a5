package entity

import "time"

// LeadKind distinguishes the two submission channels
type LeadKind string

const (
	LeadKindContact LeadKind = "contact"
	LeadKindQuote   LeadKind = "quote"
)

// ContactSubmission is a sanitized, validated contact form body
type ContactSubmission struct {
	Name    string
	Email   string
	Message string
}

// QuoteSubmission is a sanitized, validated quote form body.
// At least one of Email or Phone is set.
type QuoteSubmission struct {
	Name        string
	Company     string
	Email       string
	Phone       string
	Message     string
	ServiceType string
}

// SubmissionMeta travels with every stored lead
type SubmissionMeta struct {
	IP         string    `json:"ip"`
	UserAgent  string    `json:"userAgent"`
	Timestamp  time.Time `json:"timestamp"`
	ElapsedMs  *int64    `json:"elapsedMs,omitempty"`
	FastSubmit *bool     `json:"fastSubmit,omitempty"`
}

// Lead is the stored view of a submission, used by the admin listing
type Lead struct {
	ID          string         `json:"id"`
	Kind        LeadKind       `json:"kind"`
	Name        string         `json:"name"`
	Company     string         `json:"company,omitempty"`
	Email       string         `json:"email,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	Message     string         `json:"message"`
	ServiceType string         `json:"serviceType,omitempty"`
	Meta        SubmissionMeta `json:"meta"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// EmailMessage is a transactional message handed to a Mailer
type EmailMessage struct {
	To      string
	From    string
	ReplyTo string
	Subject string
	Text    string
	HTML    string // optional
}
