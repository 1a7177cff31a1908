package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxIDLength          = 128
	MaxNameLength        = 256
	MaxPathLength        = 1024
	MaxDescriptionLength = 2048
	MaxCategoryLength    = 64
	MaxIconLength        = 16
	MaxVideoIDLength     = 32
	MaxCoordinate        = 100000
	MaxDimension         = 20000
)

// Regular expressions for validation
var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// VideoIDPattern matches YouTube video ids
	VideoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{6,32}$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateName validates a name field
func ValidateName(name, fieldName string) error {
	if err := ValidateString(name, fieldName, 1, MaxNameLength, true); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s must not be blank", fieldName)
	}
	return nil
}

// ValidateDescription validates a description field
func ValidateDescription(description, fieldName string, required bool) error {
	return ValidateString(description, fieldName, 0, MaxDescriptionLength, required)
}

// ValidateCategory validates a category field. Categories are display
// labels, so spaces and mixed case are allowed.
func ValidateCategory(category string, required bool) error {
	return ValidateString(category, "category", 0, MaxCategoryLength, required)
}

// ValidateIcon validates an icon field (usually a single emoji)
func ValidateIcon(icon string) error {
	return ValidateString(icon, "icon", 0, MaxIconLength, false)
}

// ValidatePath validates a widget or local document path
func ValidatePath(path, fieldName string, required bool) error {
	if err := ValidateString(path, fieldName, 1, MaxPathLength, required); err != nil {
		return err
	}
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return fmt.Errorf("%s must not contain '..' segments", fieldName)
		}
	}
	return nil
}

// ValidateVideoID validates a YouTube video id
func ValidateVideoID(videoID string) error {
	if err := ValidateString(videoID, "video_id", 1, MaxVideoIDLength, true); err != nil {
		return err
	}
	if !VideoIDPattern.MatchString(videoID) {
		return fmt.Errorf("video_id has an invalid format")
	}
	return nil
}

// ValidateCoordinate validates a window coordinate
func ValidateCoordinate(v int, fieldName string) error {
	if v < -MaxCoordinate || v > MaxCoordinate {
		return fmt.Errorf("%s out of range", fieldName)
	}
	return nil
}

// ValidateDimension validates a window width or height
func ValidateDimension(v int, fieldName string) error {
	if v <= 0 || v > MaxDimension {
		return fmt.Errorf("%s must be between 1 and %d", fieldName, MaxDimension)
	}
	return nil
}
