package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Experienced Engineer", "experienced engineer"},
		{"collapses whitespace runs", "python   and\t\tsql", "python and sql"},
		{"strips surrounding whitespace", "  senior dev  ", "senior dev"},
		{"newlines and tabs", "line one\n\nline\ttwo", "line one line two"},
		{"empty input", "", ""},
		{"whitespace only", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestResumeDeterminism(t *testing.T) {
	// Inputs differing only in case or whitespace layout must collide
	variants := []string{
		"Experienced Engineer",
		"EXPERIENCED   engineer",
		"  experienced\nengineer\t",
	}

	base := Resume(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, base, Resume(v), "variant %q should share the base fingerprint", v)
	}
}

func TestResumeSensitivity(t *testing.T) {
	corpus := []string{
		"backend engineer, 5 years python",
		"backend engineer, 6 years python",
		"frontend engineer, 5 years python",
		"data scientist with sql and spark",
		"",
	}

	seen := make(map[string]string)
	for _, text := range corpus {
		fp := Resume(text)
		assert.Len(t, fp, 64)
		if prior, ok := seen[fp]; ok {
			t.Fatalf("fingerprint collision between %q and %q", prior, text)
		}
		seen[fp] = text
	}
}

func TestResumeEmptyTextIsStable(t *testing.T) {
	assert.Equal(t, Resume(""), Resume("   \n\t "))
}

func TestRequestFieldNormalization(t *testing.T) {
	// Absent and blank fields collapse to the same sentinel pair
	assert.Equal(t, Request("", ""), Request("", "   "))
	assert.Equal(t, Request("", ""), Request(" \t", "\n"))

	// Title casing is preserved, not normalized
	assert.NotEqual(t, Request("Engineer", "builds APIs"), Request("engineer", "builds APIs"))

	// Interior whitespace of non-blank fields is preserved
	assert.NotEqual(t, Request("Backend  Dev", "x"), Request("Backend Dev", "x"))

	// Surrounding whitespace of non-blank fields is trimmed
	assert.Equal(t, Request("  Backend Dev ", "x"), Request("Backend Dev", "x"))
}

func TestRequestFieldOrderMatters(t *testing.T) {
	assert.NotEqual(t, Request("a", "b"), Request("b", "a"))
}

func TestNormalizeField(t *testing.T) {
	assert.Equal(t, NotSpecified, NormalizeField(""))
	assert.Equal(t, NotSpecified, NormalizeField("   "))
	assert.Equal(t, "Backend Dev", NormalizeField(" Backend Dev "))
}
