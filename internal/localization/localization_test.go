package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocalizer(t *testing.T) *Localizer {
	t.Helper()
	fsys := fstest.MapFS{
		"i18n/en.json":    {Data: []byte(`{"hello": "Hello", "days": "%d day(s)"}`)},
		"i18n/hi.json":    {Data: []byte(`{"hello": "Namaste"}`)},
		"i18n/README.txt": {Data: []byte("ignored")},
	}
	l, err := NewLocalizer(fsys, "i18n")
	require.NoError(t, err)
	return l
}

func TestGetString(t *testing.T) {
	l := testLocalizer(t)

	assert.Equal(t, "Namaste", l.GetString("hi", "hello"))
	assert.Equal(t, "Hello", l.GetString("en", "hello"))
	assert.Equal(t, "%d day(s)", l.GetString("hi", "days"), "falls back to en")
	assert.Equal(t, "Hello", l.GetString("fr", "hello"))
	assert.Equal(t, "missing.key", l.GetString("en", "missing.key"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "3 day(s)", testLocalizer(t).Format("en", "days", 3))
}

func TestMatch(t *testing.T) {
	l := testLocalizer(t)

	assert.Equal(t, "hi", l.Match("hi-IN,hi;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", l.Match("fr-FR, en-GB;q=0.7"))
	assert.Equal(t, "en", l.Match(""))
}

func TestNewLocalizer_BadJSON(t *testing.T) {
	_, err := NewLocalizer(fstest.MapFS{"l/en.json": {Data: []byte("{")}}, "l")
	assert.Error(t, err)
}

func TestDefault_HasWorkflowMessages(t *testing.T) {
	l := Default()

	assert.Equal(t, "Only students can create complaints.", l.GetString("en", "complaint.submit_students_only"))
	assert.Equal(t, "You can raise a new complaint in a section after 5 days.", l.GetString("en", "complaint.cooldown"))
	assert.Equal(t, "Invalid credentials", l.GetString("en", "auth.invalid_credentials"))
}
