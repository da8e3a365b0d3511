package validation

import "strings"

// Content-based rejection rules for the public contact form. These run after
// structural validation and produce a rejection reason distinguishable from
// ordinary required-field errors.

// SpamPolicy holds the block lists. Zero value blocks nothing.
type SpamPolicy struct {
	// BlockedNames are substrings rejected anywhere in the name field.
	BlockedNames []string
	// BlockedKeywords are case-insensitive substrings rejected in the
	// subject or message fields.
	BlockedKeywords []string
}

// DefaultSpamPolicy mirrors the production block lists.
func DefaultSpamPolicy() SpamPolicy {
	return SpamPolicy{
		BlockedNames:    []string{"RobertHiene"},
		BlockedKeywords: []string{"write", "writing", "wrote"},
	}
}

// RejectionReason is returned when a submission trips a content rule.
type RejectionReason string

const (
	RejectedName    RejectionReason = "Your message has been rejected. Please Stop."
	RejectedKeyword RejectionReason = "Your message has been marked as spam. If this is a mistake, please email us directly at boonewh@pathsixdesigns.com"
)

// Check returns a non-empty reason when the submission should be rejected.
func (p SpamPolicy) Check(name, subject, message string) (RejectionReason, bool) {
	for _, blocked := range p.BlockedNames {
		if strings.Contains(name, blocked) {
			return RejectedName, true
		}
	}
	haystack := strings.ToLower(subject) + " " + strings.ToLower(message)
	for _, kw := range p.BlockedKeywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return RejectedKeyword, true
		}
	}
	return "", false
}
