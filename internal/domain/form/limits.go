package form

import (
	"fmt"
	"time"
)

// Maximum lengths per field, in code points
const (
	MaxNameLength        = 100
	MaxEmailLength       = 254
	MaxMessageLength     = 5000
	MaxCompanyLength     = 200
	MaxPhoneLength       = 20
	MaxServiceTypeLength = 100
)

const (
	// MinSubmissionTime is the fastest a human can plausibly fill the quote form
	MinSubmissionTime = 2 * time.Second

	// FastSubmitThreshold flags accepted quote submissions that were still quick,
	// recorded in the lead metadata for later review
	FastSubmitThreshold = 5 * time.Second
)

// Field names as they appear in submitted bodies and in error maps
const (
	FieldGeneral     = "general"
	FieldName        = "name"
	FieldEmail       = "email"
	FieldMessage     = "message"
	FieldCompany     = "company"
	FieldPhone       = "phone"
	FieldServiceType = "serviceType"
	FieldWebsite     = "website"
	FieldHoneypot    = "honeypot"
	FieldTimestamp   = "timestamp"
)

// Error messages shared by both forms
const (
	MsgInvalidBody       = "Invalid request body"
	MsgSpamDetected      = "Spam detected"
	MsgInvalidEmail      = "Invalid email format"
	MsgInvalidPhone      = "Invalid phone format"
	MsgEmailOrPhone      = "Email or phone is required"
	MsgInvalidTimestamp  = "Invalid timestamp"
	MsgSubmissionTooFast = "Submission too fast"

	msgRequiredSuffix = " is required"
	msgTooLongFormat  = "%s must be %d characters or less"
)

// FieldLimits is the per-field maximum length table
func FieldLimits() map[string]int {
	return map[string]int{
		FieldName:        MaxNameLength,
		FieldEmail:       MaxEmailLength,
		FieldMessage:     MaxMessageLength,
		FieldCompany:     MaxCompanyLength,
		FieldPhone:       MaxPhoneLength,
		FieldServiceType: MaxServiceTypeLength,
	}
}

func required(label string) string {
	return label + msgRequiredSuffix
}

func tooLong(label string, limit int) string {
	return fmt.Sprintf(msgTooLongFormat, label, limit)
}
