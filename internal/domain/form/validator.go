package form

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

// Result is the outcome shared by both forms. Errors is never nil.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
	IsSpam bool              `json:"isSpam,omitempty"`
}

// ContactResult carries the typed submission when the form is valid.
// Honeypot marks the silent-accept path: Valid is true but Submission is nil.
type ContactResult struct {
	Result
	Submission *entity.ContactSubmission `json:"-"`
	Honeypot   bool                      `json:"-"`
}

// QuoteResult carries the typed submission when the form is valid.
// ElapsedMs is set whenever a numeric timestamp was supplied, valid or not.
type QuoteResult struct {
	Result
	Submission *entity.QuoteSubmission `json:"-"`
	ElapsedMs  *int64                  `json:"-"`
}

// FastSubmit reports whether an accepted submission came in under FastSubmitThreshold.
// Nil when no timestamp was supplied.
func (r QuoteResult) FastSubmit() *bool {
	if r.ElapsedMs == nil {
		return nil
	}
	fast := *r.ElapsedMs < FastSubmitThreshold.Milliseconds()
	return &fast
}

// Validator is stateless apart from its clock and safe for concurrent use
type Validator struct {
	now func() time.Time
}

type Option func(*Validator)

// WithClock replaces time.Now, used by the timestamp anti-bot check
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = NewValidator()

// ValidateContactForm validates with the wall clock
func ValidateContactForm(data any) ContactResult {
	return defaultValidator.ValidateContactForm(data)
}

// ValidateQuoteForm validates with the wall clock
func ValidateQuoteForm(data any) QuoteResult {
	return defaultValidator.ValidateQuoteForm(data)
}

// ValidateContactForm checks name, email and message. A filled "website"
// field is a honeypot: the result is a silent success with no submission.
func (v *Validator) ValidateContactForm(data any) ContactResult {
	record, ok := asRecord(data)
	if !ok {
		return ContactResult{Result: invalidBody()}
	}

	name := SanitizeString(record[FieldName])
	email := SanitizeString(record[FieldEmail])
	message := SanitizeString(record[FieldMessage])
	website := SanitizeString(record[FieldWebsite])

	if website != "" {
		return ContactResult{
			Result:   Result{Valid: true, Errors: map[string]string{}},
			Honeypot: true,
		}
	}

	errs := map[string]string{}
	checkRequired(errs, FieldName, "Name", name, MaxNameLength)

	switch {
	case email == "":
		errs[FieldEmail] = required("Email")
	case length(email) > MaxEmailLength:
		errs[FieldEmail] = tooLong("Email", MaxEmailLength)
	case !IsValidEmail(email):
		errs[FieldEmail] = MsgInvalidEmail
	}

	checkRequired(errs, FieldMessage, "Message", message, MaxMessageLength)

	if len(errs) > 0 {
		return ContactResult{Result: Result{Errors: errs}}
	}

	return ContactResult{
		Result:     Result{Valid: true, Errors: errs},
		Submission: &entity.ContactSubmission{Name: name, Email: email, Message: message},
	}
}

// ValidateQuoteForm checks the quote form. Either a valid email or a valid
// phone is enough. A filled "honeypot" field is rejected as spam.
func (v *Validator) ValidateQuoteForm(data any) QuoteResult {
	record, ok := asRecord(data)
	if !ok {
		return QuoteResult{Result: invalidBody()}
	}

	name := SanitizeString(record[FieldName])
	company := SanitizeString(record[FieldCompany])
	email := SanitizeString(record[FieldEmail])
	phone := SanitizeString(record[FieldPhone])
	message := SanitizeString(record[FieldMessage])
	serviceType := SanitizeString(record[FieldServiceType])
	honeypot := SanitizeString(record[FieldHoneypot])

	if honeypot != "" {
		return QuoteResult{Result: Result{
			Errors: map[string]string{FieldGeneral: MsgSpamDetected},
			IsSpam: true,
		}}
	}

	errs := map[string]string{}
	checkRequired(errs, FieldName, "Name", name, MaxNameLength)
	checkRequired(errs, FieldCompany, "Company", company, MaxCompanyLength)

	hasValidEmail := email != "" && IsValidEmail(email)
	hasValidPhone := phone != "" && IsValidPhone(phone)
	if !hasValidEmail && !hasValidPhone {
		// first match wins: an invalid email hides an invalid phone
		switch {
		case email == "" && phone == "":
			errs[FieldEmail] = MsgEmailOrPhone
			errs[FieldPhone] = MsgEmailOrPhone
		case email != "":
			errs[FieldEmail] = MsgInvalidEmail
		default:
			errs[FieldPhone] = MsgInvalidPhone
		}
	}

	// length wins over any format error set above
	if length(email) > MaxEmailLength {
		errs[FieldEmail] = tooLong("Email", MaxEmailLength)
	}
	if length(phone) > MaxPhoneLength {
		errs[FieldPhone] = tooLong("Phone", MaxPhoneLength)
	}

	checkRequired(errs, FieldMessage, "Message", message, MaxMessageLength)
	checkRequired(errs, FieldServiceType, "Service type", serviceType, MaxServiceTypeLength)

	var elapsed *int64
	if raw, supplied := timestampField(record); supplied {
		ts, ok := parseTimestamp(raw)
		if !ok {
			errs[FieldTimestamp] = MsgInvalidTimestamp
		} else {
			ms := v.now().UnixMilli() - ts
			elapsed = &ms
			if ms < MinSubmissionTime.Milliseconds() {
				errs[FieldTimestamp] = MsgSubmissionTooFast
			}
		}
	}

	if len(errs) > 0 {
		return QuoteResult{Result: Result{Errors: errs}, ElapsedMs: elapsed}
	}

	return QuoteResult{
		Result: Result{Valid: true, Errors: errs},
		Submission: &entity.QuoteSubmission{
			Name:        name,
			Company:     company,
			Email:       email,
			Phone:       phone,
			Message:     message,
			ServiceType: serviceType,
		},
		ElapsedMs: elapsed,
	}
}

func invalidBody() Result {
	return Result{Errors: map[string]string{FieldGeneral: MsgInvalidBody}}
}

func checkRequired(errs map[string]string, field, label, value string, limit int) {
	switch {
	case value == "":
		errs[field] = required(label)
	case length(value) > limit:
		errs[field] = tooLong(label, limit)
	}
}

// asRecord narrows the decoded body to a field map. Anything that is not an
// object (nil, arrays, scalars) is rejected.
func asRecord(data any) (map[string]any, bool) {
	switch d := data.(type) {
	case map[string]any:
		if d == nil {
			return nil, false
		}
		return d, true
	case map[string]string:
		if d == nil {
			return nil, false
		}
		record := make(map[string]any, len(d))
		for k, val := range d {
			record[k] = val
		}
		return record, true
	default:
		return nil, false
	}
}

// timestampField reports a timestamp as supplied when it is present, not null
// and not an empty string
func timestampField(record map[string]any) (any, bool) {
	raw, ok := record[FieldTimestamp]
	if !ok || raw == nil {
		return nil, false
	}
	if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return raw, true
}

// parseTimestamp reads epoch milliseconds from a number or a string. Strings
// are read up to the first non-digit after an optional sign, so "1700000000000.5"
// parses while "abc" does not.
func parseTimestamp(raw any) (int64, bool) {
	switch ts := raw.(type) {
	case float64:
		if math.IsNaN(ts) || math.IsInf(ts, 0) {
			return 0, false
		}
		return int64(ts), true
	case float32:
		return parseTimestamp(float64(ts))
	case int:
		return int64(ts), true
	case int64:
		return ts, true
	case json.Number:
		return parseLeadingInt(string(ts))
	case string:
		return parseLeadingInt(ts)
	default:
		return 0, false
	}
}

func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	var n int64
	digits := 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		if n > (math.MaxInt64-9)/10 {
			return 0, false
		}
		n = n*10 + int64(s[digits]-'0')
	}
	if digits == 0 {
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}
