package ai

import (
	"strings"
	"testing"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	resume := "Jane Doe\nGo engineer, 6 years"

	want := "You are an expert resume reviewer and career advisor. Carefully analyze the following resume and provide highly actionable, specific, and detailed suggestions for improvement. For each suggestion, include a concrete example or rewrite (e.g., 'Instead of X, do Y' or 'For example: ...'). After the suggestions, provide an example of a rewritten section (such as the summary or a project description) that would be considered a 10 out of 10, based on your feedback. Be strict about the format and do not skip any section. Consider clarity, structure, skills, achievements, relevance to modern job markets, and overall professionalism. Also, give an overall rating for the resume on a scale of 1 to 10, where 10 is outstanding and 1 is very poor. Respond in the following format (do not include anything else):\nRating: <number>\nSuggestions:\n<bullet points or text, each with an improved example or rewrite>\nExample of rewritten section (10/10):\n<your rewritten section>\n\nResume:\n" + resume

	got := BuildAnalysisPrompt(resume)
	if got != want {
		t.Fatalf("prompt mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestBuildAnalysisPromptContainsHeadersAndText(t *testing.T) {
	inputs := []string{"x", "Résumé with ünïcode", strings.Repeat("long line ", 500)}
	headers := []string{"Rating: <number>", "Suggestions:", "Example of rewritten section (10/10):"}

	for _, input := range inputs {
		prompt := BuildAnalysisPrompt(input)
		if !strings.HasSuffix(prompt, input) {
			t.Errorf("prompt does not end with the resume text %q", input[:1])
		}
		for _, header := range headers {
			if !strings.Contains(prompt, header) {
				t.Errorf("prompt missing header %q", header)
			}
		}
	}

	if BuildAnalysisPrompt("a") != BuildAnalysisPrompt("a") {
		t.Error("prompt building is not deterministic")
	}
}

func TestBuildDirectPrompt(t *testing.T) {
	got := BuildDirectPrompt("Jane Doe")
	want := "Analyze this resume and provide suggestions for improvement:\nJane Doe"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
