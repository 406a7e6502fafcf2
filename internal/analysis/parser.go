package analysis

import (
	"regexp"
	"strings"
)

var (
	ratingPattern      = regexp.MustCompile(`(?i)Rating\s*[:\-]?\s*(\d{1,2})`)
	suggestionsPattern = regexp.MustCompile(`(?is)Suggestions\s*[:\-]?\s*(.*?)(?:Example of rewritten section|$)`)
	examplePattern     = regexp.MustCompile(`(?is)Example of rewritten section.*?:\s*(.*)`)
)

// ParsedReply holds the sections recovered from a free-form model reply.
// An empty field means the section was not found.
type ParsedReply struct {
	Rating      string
	Suggestions string
	Example     string
}

// Complete reports whether all three sections were recovered.
func (p ParsedReply) Complete() bool {
	return p.Rating != "" && p.Suggestions != "" && p.Example != ""
}

// Missing lists the names of the sections that were not recovered.
func (p ParsedReply) Missing() []string {
	var missing []string
	if p.Rating == "" {
		missing = append(missing, "rating")
	}
	if p.Suggestions == "" {
		missing = append(missing, "suggestions")
	}
	if p.Example == "" {
		missing = append(missing, "example")
	}
	return missing
}

// ReplyParser turns raw model output into sections. It must never fail.
type ReplyParser func(raw string) ParsedReply

// ParseReply is the default ReplyParser. Matching is case-insensitive and
// the suggestions and example sections are trimmed of surrounding whitespace.
func ParseReply(raw string) ParsedReply {
	var parsed ParsedReply
	if m := ratingPattern.FindStringSubmatch(raw); m != nil {
		parsed.Rating = m[1]
	}
	if m := suggestionsPattern.FindStringSubmatch(raw); m != nil {
		parsed.Suggestions = strings.TrimSpace(m[1])
	}
	if m := examplePattern.FindStringSubmatch(raw); m != nil {
		parsed.Example = strings.TrimSpace(m[1])
	}
	return parsed
}
