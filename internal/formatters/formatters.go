package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumeadvisor/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "DirectAnalysisResult", &DirectTextFormatter{})
	registry.RegisterFormatter("markdown", "DirectAnalysisResult", &DirectMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult:
		return "AnalysisResult"
	case types.DirectAnalysisResult:
		return "DirectAnalysisResult"
	default:
		return "any"
	}
}

// JSONFormatter renders any value as indented JSON, the same shape the API returns.
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter renders a structured review as plain text.
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME REVIEW ===\n\n")
	fmt.Fprintf(&output, "Rating: %s/10\n\n", result.Rating)

	output.WriteString("=== SUGGESTIONS ===\n")
	output.WriteString(result.Suggestions)
	output.WriteString("\n\n")

	output.WriteString("=== EXAMPLE OF REWRITTEN SECTION ===\n")
	output.WriteString(result.Example)
	output.WriteString("\n")

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisMarkdownFormatter renders a structured review as markdown.
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Review\n\n")
	fmt.Fprintf(&output, "**Rating:** %s/10\n\n", result.Rating)

	output.WriteString("## Suggestions\n\n")
	output.WriteString(result.Suggestions)
	output.WriteString("\n\n")

	output.WriteString("## Example of Rewritten Section\n\n")
	output.WriteString(result.Example)
	output.WriteString("\n")

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

// DirectTextFormatter renders free-form advice as plain text.
type DirectTextFormatter struct{}

func (dtf *DirectTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.DirectAnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected DirectAnalysisResult, got %T", data)
	}
	return "=== SUGGESTIONS ===\n" + result.Suggestions + "\n", nil
}

func (dtf *DirectTextFormatter) SupportedType() string {
	return "DirectAnalysisResult"
}

// DirectMarkdownFormatter renders free-form advice as markdown.
type DirectMarkdownFormatter struct{}

func (dmf *DirectMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.DirectAnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected DirectAnalysisResult, got %T", data)
	}
	return "# Resume Suggestions\n\n" + result.Suggestions + "\n", nil
}

func (dmf *DirectMarkdownFormatter) SupportedType() string {
	return "DirectAnalysisResult"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
