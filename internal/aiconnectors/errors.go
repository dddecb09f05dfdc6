package aiconnectors

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/api/googleapi"

	"github.com/personachat/pkg/models"
)

// Reason classifies an upstream failure so callers can show actionable text
type Reason string

const (
	ReasonAuth        Reason = "auth"
	ReasonQuota       Reason = "quota"
	ReasonUnavailable Reason = "unavailable"
	ReasonEmpty       Reason = "empty"
	ReasonGeneric     Reason = "generic"
)

// UpstreamError is returned when a provider call fails. It is never retried here.
type UpstreamError struct {
	Provider models.Provider
	Reason   Reason
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError reports whether err carries an UpstreamError with the given reason
func IsUpstreamError(err error, reason Reason) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Reason == reason
}

var statusCodePattern = regexp.MustCompile(`status code: (\d{3})`)

// statusCode digs an HTTP status out of a provider error, or returns 0
func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	if m := statusCodePattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code
	}
	return 0
}

func newUpstreamError(provider models.Provider, reason Reason, err error) *UpstreamError {
	name := provider.DisplayName()

	var msg string
	switch reason {
	case ReasonAuth:
		msg = fmt.Sprintf("Invalid %s API key. Please check your environment variables.", name)
	case ReasonQuota:
		if provider == models.ProviderOpenAI {
			msg = "OpenAI API rate limit exceeded. Please try again later."
		} else {
			msg = fmt.Sprintf("%s API quota exceeded. Please try again later.", name)
		}
	case ReasonUnavailable:
		msg = fmt.Sprintf("%s service is currently unavailable. Please try again later.", name)
	case ReasonEmpty:
		msg = fmt.Sprintf("No response generated from %s", name)
	default:
		detail := "unknown error"
		if err != nil {
			detail = err.Error()
		}
		msg = fmt.Sprintf("%s API error: %s", name, detail)
	}

	return &UpstreamError{Provider: provider, Reason: reason, Message: msg, Err: err}
}

func newEmptyResponseError(provider models.Provider) *UpstreamError {
	return newUpstreamError(provider, ReasonEmpty, nil)
}

// reasonFromStatus maps well-known HTTP statuses
func reasonFromStatus(code int) (Reason, bool) {
	switch code {
	case 401, 403:
		return ReasonAuth, true
	case 429:
		return ReasonQuota, true
	case 500, 502, 503:
		return ReasonUnavailable, true
	}
	return "", false
}

// reasonFromStandard maps langchain's standardized error codes
func reasonFromStandard(mapped error) (Reason, bool) {
	switch {
	case llms.IsAuthenticationError(mapped):
		return ReasonAuth, true
	case llms.IsRateLimitError(mapped), llms.IsQuotaExceededError(mapped):
		return ReasonQuota, true
	case llms.IsProviderUnavailableError(mapped):
		return ReasonUnavailable, true
	}
	return "", false
}

func classifyOpenAI(err error) error {
	if err == nil {
		return nil
	}
	if reason, ok := reasonFromStatus(statusCode(err)); ok {
		return newUpstreamError(models.ProviderOpenAI, reason, err)
	}
	if reason, ok := reasonFromStandard(openai.MapError(err)); ok {
		return newUpstreamError(models.ProviderOpenAI, reason, err)
	}
	return newUpstreamError(models.ProviderOpenAI, ReasonGeneric, err)
}

func classifyGemini(err error) error {
	if err == nil {
		return nil
	}

	// Gemini reports the failure class as an upper-case status token
	msg := err.Error()
	switch {
	case strings.Contains(msg, "API_KEY_INVALID"):
		return newUpstreamError(models.ProviderGemini, ReasonAuth, err)
	case strings.Contains(msg, "QUOTA_EXCEEDED"), strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return newUpstreamError(models.ProviderGemini, ReasonQuota, err)
	case strings.Contains(msg, "UNAVAILABLE"):
		return newUpstreamError(models.ProviderGemini, ReasonUnavailable, err)
	}

	if reason, ok := reasonFromStatus(statusCode(err)); ok {
		return newUpstreamError(models.ProviderGemini, reason, err)
	}
	if reason, ok := reasonFromStandard(googleai.MapError(err)); ok {
		return newUpstreamError(models.ProviderGemini, reason, err)
	}
	return newUpstreamError(models.ProviderGemini, ReasonGeneric, err)
}
