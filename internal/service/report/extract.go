package report

import "strings"

// Extractor looks for report text in a decoded JSON response.
type Extractor func(body interface{}) (string, bool)

// Path builds an Extractor walking object keys (string) and array indexes (int).
func Path(steps ...interface{}) Extractor {
	return func(body interface{}) (string, bool) {
		cur := body
		for _, step := range steps {
			switch key := step.(type) {
			case string:
				obj, ok := cur.(map[string]interface{})
				if !ok {
					return "", false
				}
				cur, ok = obj[key]
				if !ok {
					return "", false
				}
			case int:
				arr, ok := cur.([]interface{})
				if !ok || key < 0 || key >= len(arr) {
					return "", false
				}
				cur = arr[key]
			default:
				return "", false
			}
		}

		text, ok := cur.(string)
		if !ok || strings.TrimSpace(text) == "" {
			return "", false
		}
		return text, true
	}
}

var (
	// ResponsesText reads the structured content list of the Responses API.
	ResponsesText = Path("output", 0, "content", 0, "text")
	// ChatMessage reads the chat-completion style message field.
	ChatMessage = Path("choices", 0, "message", "content")
	// ReportField reads the body returned by the drafting endpoint.
	ReportField = Path("report")
)

// Extract tries each extractor in order; the first non-empty text wins.
func Extract(body interface{}, extractors ...Extractor) string {
	for _, extract := range extractors {
		if text, ok := extract(body); ok {
			return text
		}
	}
	return ReplyNotFound
}
