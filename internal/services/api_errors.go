package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error classes used in logs and the failure metric
const (
	ErrorClassRateLimit  = "rate_limit"
	ErrorClassQuota      = "quota"
	ErrorClassOverloaded = "overloaded"
	ErrorClassAuth       = "auth"
	ErrorClassInvalid    = "invalid_request"
	ErrorClassServer     = "server"
	ErrorClassTransport  = "transport"
	ErrorClassOther      = "other"
)

// APIError is a non-2xx response from the generation API
type APIError struct {
	StatusCode int
	Type       string // provider error type, e.g. "overloaded_error"
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	if e.Type != "" {
		return fmt.Sprintf("API error (status %d, %s): %s", e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, msg)
}

// Class returns the error class for this response
func (e *APIError) Class() string {
	return ClassifyAPIError(e.StatusCode, e.Type+" "+e.Body)
}

// IsQuotaError detects if a response is related to quota exhaustion or rate limiting
func IsQuotaError(statusCode int, responseBody string) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}

	lowerBody := strings.ToLower(responseBody)
	quotaPatterns := []string{
		"quota exceeded",
		"rate limit",
		"rate_limit_error",
		"too many requests",
		"tokens per minute",
		"requests per minute",
		"credit balance",
		"billing",
	}

	for _, pattern := range quotaPatterns {
		if strings.Contains(lowerBody, pattern) {
			return true
		}
	}

	return false
}

// ClassifyAPIError maps a status code and response body to an error class
func ClassifyAPIError(statusCode int, responseBody string) string {
	lowerBody := strings.ToLower(responseBody)

	switch {
	case strings.Contains(lowerBody, "credit balance") || strings.Contains(lowerBody, "billing"):
		return ErrorClassQuota
	case IsQuotaError(statusCode, responseBody):
		return ErrorClassRateLimit
	case statusCode == 529 || strings.Contains(lowerBody, "overloaded"):
		return ErrorClassOverloaded
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorClassAuth
	case statusCode == http.StatusBadRequest || statusCode == http.StatusNotFound || statusCode == http.StatusRequestEntityTooLarge:
		return ErrorClassInvalid
	case statusCode >= 500:
		return ErrorClassServer
	}
	return ErrorClassOther
}

// ClassifyError returns the error class for any error raised during a run
func ClassifyError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class()
	}
	if errors.Is(err, ErrGenerationFailed) || errors.Is(err, ErrDispatchFailed) {
		return ErrorClassTransport
	}
	return ErrorClassOther
}
