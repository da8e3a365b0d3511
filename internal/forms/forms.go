package forms

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pathsixdesigns/pathsix-crm/internal/validation"
)

// Field kinds understood by the registry.
const (
	KindText     = "text"
	KindSelect   = "select"
	KindDate     = "date"
	KindNumber   = "number"
	KindTextarea = "textarea"
	KindEmail    = "email"
	KindTel      = "tel"
)

const dateLayout = "2006-01-02"

// Field describes one input control of a dynamic form.
type Field struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Kind        string   `json:"kind"`
	Required    bool     `json:"required"`
	Placeholder string   `json:"placeholder,omitempty"`
	MaxLen      int      `json:"max_len,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

// Registry maps an entity-type key to its ordered field set. It is resolved
// once at startup; a missing config file or entity key is an error, never a
// silent default.
type Registry struct {
	forms map[string][]Field
}

// Load reads and validates the form configuration file.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form config %s: %w", path, err)
	}
	var forms map[string][]Field
	if err := json.Unmarshal(raw, &forms); err != nil {
		return nil, fmt.Errorf("parse form config %s: %w", path, err)
	}
	for entity, fields := range forms {
		if len(fields) == 0 {
			return nil, fmt.Errorf("form config: entity %q has no fields", entity)
		}
		for _, f := range fields {
			if f.Name == "" {
				return nil, fmt.Errorf("form config: entity %q has a field without a name", entity)
			}
			switch f.Kind {
			case KindText, KindSelect, KindDate, KindNumber, KindTextarea, KindEmail, KindTel:
			default:
				return nil, fmt.Errorf("form config: entity %q field %q has unknown kind %q", entity, f.Name, f.Kind)
			}
		}
	}
	return &Registry{forms: forms}, nil
}

// Fields returns the ordered field descriptors for an entity type.
func (r *Registry) Fields(entity string) ([]Field, error) {
	fields, ok := r.forms[entity]
	if !ok {
		return nil, fmt.Errorf("no form configuration for %q", entity)
	}
	return fields, nil
}

// Values holds kind-parsed submitted data keyed by field name.
type Values struct {
	Strings map[string]string
	Dates   map[string]time.Time
	Numbers map[string]float64
}

// Parse applies required checks and kind-appropriate parsing to submitted
// form values. It returns every violation in one pass.
func (r *Registry) Parse(entity string, form url.Values) (*Values, validation.Violations, error) {
	fields, err := r.Fields(entity)
	if err != nil {
		return nil, nil, err
	}
	out := &Values{
		Strings: map[string]string{},
		Dates:   map[string]time.Time{},
		Numbers: map[string]float64{},
	}
	v := validation.Violations{}
	for _, f := range fields {
		raw := strings.TrimSpace(form.Get(f.Name))
		if f.Required && raw == "" {
			v.Add(f.Name, fmt.Sprintf("%s is required.", f.Label))
			continue
		}
		if raw == "" {
			continue
		}
		if f.MaxLen > 0 {
			validation.MaxLen(f.Name, raw, f.MaxLen, v)
		}
		switch f.Kind {
		case KindDate:
			t, err := time.Parse(dateLayout, raw)
			if err != nil {
				v.Add(f.Name, fmt.Sprintf("%s must be a date in YYYY-MM-DD format.", f.Label))
				continue
			}
			out.Dates[f.Name] = t
		case KindNumber:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				v.Add(f.Name, fmt.Sprintf("%s must be a number.", f.Label))
				continue
			}
			out.Numbers[f.Name] = n
		case KindEmail:
			validation.Email(f.Name, raw, v)
			out.Strings[f.Name] = raw
		case KindTel:
			validation.Phone(f.Name, raw, v)
			out.Strings[f.Name] = raw
		case KindSelect:
			if len(f.Choices) > 0 && !contains(f.Choices, raw) {
				v.Add(f.Name, fmt.Sprintf("%s must be one of the listed choices.", f.Label))
				continue
			}
			out.Strings[f.Name] = raw
		default:
			out.Strings[f.Name] = raw
		}
	}
	return out, v, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
