package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policyEntities are the escapes the strict policy adds to plain text. Angle brackets stay encoded.
var policyEntities = strings.NewReplacer("&#39;", "'", "&#34;", `"`, "&amp;", "&")

// cleanText strips markup from user supplied text. Input entities are decoded before the policy runs
// so encoded tags are stripped like literal ones; only quotes and ampersands are decoded afterwards,
// which keeps names like O'Brien as typed.
func cleanText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(policyEntities.Replace(policy.Sanitize(html.UnescapeString(value))))
}

// maskEmailAddress keeps the first and last character of the local part, e.g. s***t@baze.edu.ng.
func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return "***"
	}
	local := []rune(parts[0])
	domain := parts[1]
	if len(local) <= 2 {
		return string(local[:1]) + "***@" + domain
	}
	return string(local[:1]) + "***" + string(local[len(local)-1:]) + "@" + domain
}
