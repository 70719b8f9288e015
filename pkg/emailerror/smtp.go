package emailerror

// SMTP errors carry a reply code. 5xx mailbox codes are recipient failures,
// 4xx codes and connection problems are the relay's.

var smtpRecipientPatterns = []string{
	"550 ",
	"550:",
	"551 ",
	"551:",
	"552 ",
	"552:",
	"553 ",
	"553:",
	"5.1.1", // Mailbox does not exist
	"5.1.2", // Bad destination mailbox
	"5.1.3", // Bad destination mailbox syntax
	"5.2.1", // Mailbox disabled
	"5.2.2", // Mailbox full
	"mailbox unavailable",
	"mailbox not found",
	"user unknown",
	"no such user",
	"recipient rejected",
	"does not exist",
	"mailbox full",
	"over quota",
}

var smtpContentPatterns = []string{
	"554 ",
	"554:",
	"5.6.", // Message content or media errors
	"message too large",
	"message size exceeds",
	"content rejected",
}

var smtpProviderPatterns = []string{
	"421 ",
	"421:",
	"450 ",
	"450:",
	"451 ",
	"451:",
	"452 ",
	"452:",
	"4.7.1",
	"connection refused",
	"connection reset",
	"timed out",
	"timeout",
	"tls handshake",
	"starttls",
	"authentication failed",
	"auth failed",
	"535 ",
	"service unavailable",
	"try again later",
	"temporary failure",
	"greylist",
}

func (c *Classifier) classifySMTPError(result *ClassifiedError, errStr string) {
	switch {
	case containsAny(errStr, smtpRecipientPatterns):
		result.Type = ErrorTypeRecipient
		result.Retryable = false
	case containsAny(errStr, smtpContentPatterns):
		result.Type = ErrorTypeContent
		result.Retryable = false
	case containsAny(errStr, smtpProviderPatterns):
		result.Type = ErrorTypeProvider
		// Credentials need fixing before a retry helps
		result.Retryable = !containsAny(errStr, []string{"authentication failed", "auth failed", "535 "})
	default:
		classifyByHTTPStatus(result)
	}
}
