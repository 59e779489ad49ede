package detect

import "regexp"

// builtinRecognizers returns the default recognizer set. Confidence scores
// reflect how specifically each pattern identifies its entity type: high
// scores mean the format is structurally unambiguous, low scores mean the
// pattern can match non-PII text.
func builtinRecognizers() []Recognizer {
	return []Recognizer{
		{
			Entity: "EMAIL_ADDRESS",
			Pattern: regexp.MustCompile(
				`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`,
			),
			Score: 0.95,
		},
		{
			Entity: "IP_ADDRESS",
			Pattern: regexp.MustCompile(
				`\b(?:\d{1,3}\.){3}\d{1,3}\b`,
			),
			Score: 0.9,
		},
		{
			Entity: "US_SSN",
			Pattern: regexp.MustCompile(
				`\b\d{3}-\d{2}-\d{4}\b`,
			),
			Score:     0.85,
			Languages: []string{"en"},
		},
		{
			Entity: "IBAN_CODE",
			Pattern: regexp.MustCompile(
				`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`,
			),
			Score: 0.8,
		},
		{
			Entity: "CREDIT_CARD",
			Pattern: regexp.MustCompile(
				`\b(?:\d[ \-]?){13,16}\b`,
			),
			Score: 0.7,
		},
		{
			Entity: "PHONE_NUMBER",
			Pattern: regexp.MustCompile(
				`\+?\d[\d\s\-().]{7,}\d`,
			),
			Score: 0.6,
		},
	}
}
