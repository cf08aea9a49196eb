// internal/common/llm/decode.go
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "shopper-agents/internal/common/errors"
)

// ExtractJSON pulls the first JSON object or array out of free-form
// model output. Models routinely wrap results in markdown fences or
// prepend prose, so we locate the outermost braces instead of trusting
// the text as-is.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	start := objStart
	open, close := "{", "}"
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start = arrStart
		open, close = "[", "]"
	}
	if start < 0 {
		return "", fmt.Errorf("no JSON value found in output")
	}
	end := strings.LastIndex(s, close)
	if end <= start {
		return "", fmt.Errorf("unterminated JSON %s in output", open)
	}

	return s[start : end+1], nil
}

// DecodeValidated extracts JSON from raw model output, checks it
// against the given schema, and unmarshals it into out. Any failure is
// a recoverable parse error; callers fall back rather than abort.
func DecodeValidated(raw, schema string, out interface{}) error {
	extracted, err := ExtractJSON(raw)
	if err != nil {
		return apperrors.NewReasoningParseError(err.Error())
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(extracted),
	)
	if err != nil {
		return apperrors.NewReasoningParseError(err.Error())
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			issues = append(issues, e.String())
		}
		return apperrors.NewReasoningParseError("schema violation: " + strings.Join(issues, "; "))
	}

	if err := json.Unmarshal([]byte(extracted), out); err != nil {
		return apperrors.NewReasoningParseError(err.Error())
	}
	return nil
}
