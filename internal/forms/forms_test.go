package forms

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form_fields.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testConfig = `{
  "widget": [
    {"name": "title", "label": "Title", "kind": "text", "required": true, "max_len": 10},
    {"name": "due", "label": "Due", "kind": "date"},
    {"name": "price", "label": "Price", "kind": "number"},
    {"name": "tier", "label": "Tier", "kind": "select", "choices": ["a", "b"]},
    {"name": "contact", "label": "Contact", "kind": "email"}
  ]
}`

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	path := writeConfig(t, `{"x": [{"name": "a", "label": "A", "kind": "checkbox"}]}`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown kind")
}

func TestLoadRejectsEmptyEntity(t *testing.T) {
	path := writeConfig(t, `{"x": []}`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "no fields")
}

func TestFieldsPreservesOrder(t *testing.T) {
	r, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	fields, err := r.Fields("widget")
	require.NoError(t, err)
	require.Len(t, fields, 5)
	assert.Equal(t, "title", fields[0].Name)
	assert.Equal(t, "contact", fields[4].Name)
}

func TestFieldsUnknownEntity(t *testing.T) {
	r, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	_, err = r.Fields("gadget")
	assert.Error(t, err)
}

func TestParseKinds(t *testing.T) {
	r, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	values, v, err := r.Parse("widget", url.Values{
		"title":   {"hello"},
		"due":     {"2026-03-01"},
		"price":   {"19.99"},
		"tier":    {"a"},
		"contact": {"x@example.com"},
	})
	require.NoError(t, err)
	assert.True(t, v.Empty())
	assert.Equal(t, "hello", values.Strings["title"])
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), values.Dates["due"])
	assert.Equal(t, 19.99, values.Numbers["price"])
}

func TestParseCollectsViolations(t *testing.T) {
	r, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	_, v, err := r.Parse("widget", url.Values{
		"title":   {""},
		"due":     {"03/01/2026"},
		"price":   {"a lot"},
		"tier":    {"c"},
		"contact": {"nope"},
	})
	require.NoError(t, err)
	assert.Len(t, v["title"], 1)
	assert.Len(t, v["due"], 1)
	assert.Len(t, v["price"], 1)
	assert.Len(t, v["tier"], 1)
	assert.Len(t, v["contact"], 1)
}

func TestParseMaxLen(t *testing.T) {
	r, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	_, v, err := r.Parse("widget", url.Values{"title": {"this title is far too long"}})
	require.NoError(t, err)
	assert.Len(t, v["title"], 1)
}
