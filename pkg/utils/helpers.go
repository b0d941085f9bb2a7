package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRequestID generates a unique request ID for tracking
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateRunID generates a unique identifier for an ingestion run
func GenerateRunID() string {
	return uuid.New().String()
}

// CleanText collapses runs of whitespace into single spaces and trims the result
func CleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// GetStringOrDefault returns the value if not empty, otherwise returns the default
func GetStringOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
