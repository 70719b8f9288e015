package emailerror

// Netcore answers JSON errors over HTTP for both payload shapes. The status
// code is usually enough; the message refines 400 responses.

var netcoreRecipientPatterns = []string{
	"invalid email",
	"invalid recipient",
	"recipient is blacklisted",
	"unsubscribed",
	"bounced",
	"suppressed",
}

var netcoreContentPatterns = []string{
	"amp content",
	"amp_html",
	"amphtml",
	"invalid content",
	"content is required",
	"subject is required",
	"payload too large",
}

var netcoreProviderPatterns = []string{
	"invalid api key",
	"api key",
	"unauthorized",
	"not authorized",
	"credits",
	"quota",
	"rate limit",
	"from email is not verified",
	"domain not verified",
	"connection refused",
	"timeout",
}

func (c *Classifier) classifyNetcoreError(result *ClassifiedError, errStr string) {
	switch {
	case containsAny(errStr, netcoreProviderPatterns):
		result.Type = ErrorTypeProvider
		result.Retryable = containsAny(errStr, []string{"rate limit", "quota", "timeout", "connection refused"})
	case containsAny(errStr, netcoreRecipientPatterns):
		result.Type = ErrorTypeRecipient
		result.Retryable = false
	case containsAny(errStr, netcoreContentPatterns):
		result.Type = ErrorTypeContent
		result.Retryable = false
	default:
		classifyByHTTPStatus(result)
	}
}
