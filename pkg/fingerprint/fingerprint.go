// Package fingerprint derives stable, collision-resistant identities from the
// variable, human-supplied inputs of an analysis request. Two requests whose
// inputs are equivalent after normalization always produce the same digests,
// which is what lets the cache deduplicate expensive AI calls.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NotSpecified is the sentinel an absent or blank optional job field
// normalizes to before hashing.
const NotSpecified = "not_specified"

// fieldSeparator joins the normalized job title and description before hashing
const fieldSeparator = "_"

// Normalize returns the canonical form of resume text used for fingerprinting:
// lowercased, with every run of whitespace collapsed to a single space and
// surrounding whitespace stripped.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Resume computes the content fingerprint of resume text. The digest depends
// only on the normalized text, so differences in letter case or whitespace
// layout do not produce distinct fingerprints. Empty text is valid input and
// hashes to a fixed digest; rejecting empty resumes is the caller's concern.
func Resume(text string) string {
	return digest(Normalize(text))
}

// Request computes the fingerprint of the optional job fields of an analysis
// request. An empty or whitespace-only field collapses to the NotSpecified
// sentinel; otherwise only surrounding whitespace is trimmed, preserving case
// and interior spacing. Request("", "") therefore equals the fingerprint of
// two absent fields.
func Request(jobTitle, jobDescription string) string {
	return digest(NormalizeField(jobTitle) + fieldSeparator + NormalizeField(jobDescription))
}

// NormalizeField returns the canonical form of a single optional job field
func NormalizeField(field string) string {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return NotSpecified
	}
	return trimmed
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
