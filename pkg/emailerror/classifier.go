package emailerror

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Notifuse/ampmailer/internal/domain"
)

// Classifier classifies send errors by strategy
type Classifier struct{}

// NewClassifier creates a new error classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify analyzes a send error. httpStatus is the status of the send
// response when known; when zero it is looked for in the error text.
func (c *Classifier) Classify(err error, httpStatus int, strategy domain.SendStrategyKind) *ClassifiedError {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	if httpStatus == 0 {
		httpStatus = extractHTTPStatus(errStr)
	}

	result := &ClassifiedError{
		Original:   err,
		Strategy:   string(strategy),
		HTTPStatus: httpStatus,
		Retryable:  true,
	}

	switch strategy {
	case domain.SendStrategyNetcoreV6, domain.SendStrategyNetcoreLegacy:
		c.classifyNetcoreError(result, errStr)
	case domain.SendStrategySES:
		c.classifySESError(result, errStr)
	case domain.SendStrategySMTP:
		c.classifySMTPError(result, errStr)
	default:
		classifyByHTTPStatus(result)
	}
	return result
}

var (
	// Matches patterns like "status code: 429", "status_code: 500", "status code 503"
	httpStatusRegex = regexp.MustCompile(`(?i)status[_\s]code[:\s]*(\d{3})`)

	// Matches patterns like "HTTP 429", "http/1.1 500"
	httpPrefixRegex = regexp.MustCompile(`(?i)http[/\d.]*\s*(\d{3})`)

	// Matches patterns like "(429)", "[500]"
	bracketStatusRegex = regexp.MustCompile(`[\[(](\d{3})[\])]`)
)

// extractHTTPStatus looks for an HTTP status code in an error message
func extractHTTPStatus(errStr string) int {
	for _, re := range []*regexp.Regexp{httpStatusRegex, httpPrefixRegex, bracketStatusRegex} {
		if matches := re.FindStringSubmatch(errStr); len(matches) >= 2 {
			if status, err := strconv.Atoi(matches[1]); err == nil {
				return status
			}
		}
	}
	return 0
}

// classifyByHTTPStatus is the fallback when no message pattern matched
func classifyByHTTPStatus(result *ClassifiedError) {
	status := result.HTTPStatus
	switch {
	case status == 429, status >= 500:
		result.Type = ErrorTypeProvider
		result.Retryable = true
	case status == 401, status == 403:
		// Wrong API key or account settings need manual intervention
		result.Type = ErrorTypeProvider
		result.Retryable = false
	case status == 413, status == 422:
		result.Type = ErrorTypeContent
		result.Retryable = false
	case status >= 400:
		result.Type = ErrorTypeUnknown
		result.Retryable = false
	default:
		result.Type = ErrorTypeUnknown
		result.Retryable = true
	}
}

// containsAny checks if the error string contains any of the patterns (case-insensitive)
func containsAny(errStr string, patterns []string) bool {
	errLower := strings.ToLower(errStr)
	for _, pattern := range patterns {
		if strings.Contains(errLower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
