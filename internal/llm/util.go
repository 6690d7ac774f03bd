// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock recovers a JSON payload from an LLM response. Models wrap
// JSON in markdown fences or conversational preamble even when instructed
// not to, so this strips fences first and then falls back to scanning for
// the first balanced JSON object or array.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Already clean JSON
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		if obj := extractJSONObject(text); obj != "" {
			return obj
		}
		if arr := extractJSONArray(text); arr != "" {
			return arr
		}
		return text
	}

	// Conversational preamble before the payload
	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx >= 0 && (arrIdx < 0 || objIdx < arrIdx) {
		if obj := extractJSONObject(text[objIdx:]); obj != "" {
			return obj
		}
	}
	if arrIdx >= 0 {
		if arr := extractJSONArray(text[arrIdx:]); arr != "" {
			return arr
		}
	}

	return text
}

// extractJSONObject returns the first balanced {...} from text, which must
// start with '{'. Returns "" if text doesn't start with an object or the
// braces never balance.
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the first balanced [...] from text, which must
// start with '['. Returns "" if text doesn't start with an array or the
// brackets never balance.
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

// extractBalanced scans for a balanced open/close pair, respecting JSON
// string literals and escapes.
func extractBalanced(text string, open, close byte) string {
	if len(text) == 0 || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// ignore structural characters inside strings
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
