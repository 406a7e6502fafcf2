package ai

// analysisInstructions is the reviewer template for document uploads. The
// reply parser keys on its three headers, so the text must stay byte-stable.
const analysisInstructions = "You are an expert resume reviewer and career advisor. " +
	"Carefully analyze the following resume and provide highly actionable, specific, and detailed suggestions for improvement. " +
	"For each suggestion, include a concrete example or rewrite (e.g., 'Instead of X, do Y' or 'For example: ...'). " +
	"After the suggestions, provide an example of a rewritten section (such as the summary or a project description) that would be considered a 10 out of 10, based on your feedback. " +
	"Be strict about the format and do not skip any section. " +
	"Consider clarity, structure, skills, achievements, relevance to modern job markets, and overall professionalism. " +
	"Also, give an overall rating for the resume on a scale of 1 to 10, where 10 is outstanding and 1 is very poor. " +
	"Respond in the following format (do not include anything else):\n" +
	"Rating: <number>\n" +
	"Suggestions:\n" +
	"<bullet points or text, each with an improved example or rewrite>\n" +
	"Example of rewritten section (10/10):\n" +
	"<your rewritten section>\n"

const directInstructions = "Analyze this resume and provide suggestions for improvement:\n"

// BuildAnalysisPrompt embeds resume text in the strict three-section template.
func BuildAnalysisPrompt(resumeText string) string {
	return analysisInstructions + "\nResume:\n" + resumeText
}

// BuildDirectPrompt builds the free-form prompt used for pasted resume text.
func BuildDirectPrompt(resumeText string) string {
	return directInstructions + resumeText
}
