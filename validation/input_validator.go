// Package validation provides request input validation for the instructions API.
package validation

import (
	"fmt"
	"strings"

	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/vocabulary/entities"
)

// Dangerous patterns as strings (faster than regex for simple substring matching)
var dangerousPatterns = []string{
	"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
	"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
	"eval(", "expression(", "url(", "@import", "binding(", "behavior(",
	// SQL injection patterns
	"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
	"xp_", "sp_", "exec(", "execute(",
	// Path traversal patterns
	"../", "..\\", "%2e%2e", "file://",
	// NoSQL injection patterns
	"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
}

const (
	maxTextLength    = 2000
	maxTabNameLength = 60
)

// InputValidatorImpl implements the interfaces.Validator interface
type InputValidatorImpl struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() interfaces.Validator {
	return &InputValidatorImpl{}
}

// ValidateText validates free-form user text: field values, precaution
// lines and hand-edited instruction panes. Instruction text is display
// content, so any printable characters are accepted; only injection
// patterns and oversized payloads are rejected.
func (v *InputValidatorImpl) ValidateText(input string) error {
	if len(input) > maxTextLength {
		return fmt.Errorf("text too long: maximum %d characters", maxTextLength)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("text contains potentially dangerous content")
		}
	}

	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("text contains excessive character repetition")
	}

	return nil
}

// ValidateLanguage checks the tag against the supported set
func (v *InputValidatorImpl) ValidateLanguage(lang string) error {
	if strings.TrimSpace(lang) == "" {
		return fmt.Errorf("language cannot be empty")
	}

	for _, supported := range entities.Languages {
		if lang == supported {
			return nil
		}
	}

	return fmt.Errorf("unsupported language %q, expected one of: %v", lang, entities.Languages)
}

// ValidateCategory checks a vocabulary category name
func (v *InputValidatorImpl) ValidateCategory(input string) (entities.Category, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("category cannot be empty")
	}

	for _, category := range entities.Categories {
		if entities.Category(trimmed) == category {
			return category, nil
		}
	}

	return "", fmt.Errorf("unknown category %q, expected one of: %v", trimmed, entities.Categories)
}

// ValidateTabName validates a medication tab display name
func (v *InputValidatorImpl) ValidateTabName(name string) error {
	if len(name) > maxTabNameLength {
		return fmt.Errorf("tab name too long: maximum %d characters", maxTabNameLength)
	}

	lowerName := strings.ToLower(name)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerName, pattern) {
			return fmt.Errorf("tab name contains potentially dangerous content")
		}
	}

	return nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func (v *InputValidatorImpl) hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 20 times consecutively
	for i := 0; i < len(input)-20; i++ {
		allSame := true
		for j := 1; j <= 20; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
