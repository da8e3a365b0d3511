package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Violations collects every message per offending field. Validators append and
// never short-circuit, so callers always receive the complete set in one pass.
type Violations map[string][]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records a violation message for a field.
func (v Violations) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Messages flattens all violations into a single list, field order unspecified.
func (v Violations) Messages() []string {
	var out []string
	for _, msgs := range v {
		out = append(out, msgs...)
	}
	return out
}

var (
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9\s-]+$`)
	stateRegex = regexp.MustCompile(`^[A-Z]{2}$`)
	zipRegex   = regexp.MustCompile(`^\d{5}(?:-?\d{4})?$`)
)

func Required(field, value, message string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, message)
	}
}

func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	if !emailRegex.MatchString(value) {
		v.Add(field, "Please provide a valid email address.")
	}
}

func Phone(field, value string, v Violations) {
	if value == "" {
		return
	}
	if !phoneRegex.MatchString(value) {
		v.Add(field, "Please provide a valid phone number.")
	}
}

// MaxLen rejects silently-truncating input instead of truncating it.
func MaxLen(field, value string, limit int, v Violations) {
	if len(value) > limit {
		v.Add(field, fmt.Sprintf("%s cannot exceed %d characters.", displayName(field), limit))
	}
}

// State accepts a 2-letter code in either case; normalization to uppercase
// happens at write time in the service layer.
func State(field, value string, v Violations) {
	if value == "" {
		return
	}
	if !stateRegex.MatchString(strings.ToUpper(value)) {
		v.Add(field, "State must be a valid 2-letter code (e.g., TX).")
	}
}

func Zip(field, value string, v Violations) {
	if value == "" {
		return
	}
	if !zipRegex.MatchString(value) {
		v.Add(field, "Please provide a valid zip code (e.g., 12345 or 12345-6789).")
	}
}

func displayName(field string) string {
	parts := strings.Split(field, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
