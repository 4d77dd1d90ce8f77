package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/intel-cli/internal/config"
)

func newValidator() *Validator {
	return New(config.DefaultWordlists())
}

func TestIsValidName_Accepted(t *testing.T) {
	v := newValidator()
	for _, name := range []string{
		"Elon Musk",
		"Jane Carter",
		"Mary Barra",
		"Satya Nadella",
		"Jamie Dimon Jr.",
	} {
		assert.True(t, v.IsValidName(name), name)
	}
}

func TestIsValidName_Rejected(t *testing.T) {
	v := newValidator()
	tests := []struct {
		name   string
		reason string
	}{
		{"John Doe", "filler name"},
		{"Vice President", "non-name phrase"},
		{"Senior Vice President", "superset of non-name phrase"},
		{"A Smith", "first part too short"},
		{"Madonna", "single part"},
		{"jane carter", "lowercase parts"},
		{"Acme Holdings", "company indicator"},
		{"Sequoia Capital", "company indicator"},
		{"Chief Executive", "non-name phrase"},
		{"Announces Record", "title/action word"},
		{"Alexander Maximilian Bartholomew Fitzgerald Junior", "too long"},
		{"Li W", "too short"},
	}
	for _, tt := range tests {
		assert.False(t, v.IsValidName(tt.name), "%s (%s)", tt.name, tt.reason)
	}
}

func TestIsPoliticalRole(t *testing.T) {
	v := newValidator()

	political := []string{
		"President",
		"The President",
		"Senator",
		"Governor of California",
		"Secretary of State",
		"Prime Minister",
	}
	for _, r := range political {
		assert.True(t, v.IsPoliticalRole(r), r)
	}

	corporate := []string{
		"Co-President",
		"President of Acme Corp",
		"CEO",
		"Chief Financial Officer",
		"Executive Vice President",
	}
	for _, r := range corporate {
		assert.False(t, v.IsPoliticalRole(r), r)
	}
}

func TestHasKnownTitle(t *testing.T) {
	v := newValidator()

	assert.True(t, v.HasKnownTitle("named CEO of the company"))
	assert.True(t, v.HasKnownTitle("appointed Chief Financial Officer"))
	assert.True(t, v.HasKnownTitle("new Head of Product"))
	assert.False(t, v.HasKnownTitle("a precious metals producer"))
	assert.False(t, v.HasKnownTitle("quarterly revenue grew"))
}

func TestIsReputableSource(t *testing.T) {
	v := newValidator()

	assert.True(t, v.IsReputableSource("reuters.com"))
	assert.True(t, v.IsReputableSource("www.reuters.com"))
	assert.True(t, v.IsReputableSource("markets.ft.com"))
	assert.False(t, v.IsReputableSource("example-blog.net"))
	assert.False(t, v.IsReputableSource("notreuters.com"))
}

func TestWordlistOverride(t *testing.T) {
	wl := config.DefaultWordlists()
	wl.FillerNames = []string{"Test Person"}
	v := New(wl)

	assert.False(t, v.IsValidName("Test Person"))
	// Default filler list replaced wholesale.
	assert.True(t, v.IsValidName("John Doe"))
}
