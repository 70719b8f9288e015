package emailerror

// SES error codes come back in the message of the AWS error, for example
// "MessageRejected: Email address is not verified".

var sesRecipientPatterns = []string{
	"messagerejected",
	"email address is not verified",
	"invalid recipient",
	"mailbox unavailable",
	"mailbox not found",
	"user unknown",
	"address rejected",
	"recipient rejected",
}

var sesProviderPatterns = []string{
	"throttling",
	"limitexceeded",
	"quota exceeded",
	"daily message quota",
	"serviceunavailable",
	"service unavailable",
	"accessdenied",
	"invalidclienttokenid",
	"signaturedoesnotmatch",
	"expiredtoken",
	"expired token",
	"account is paused",
	"sending paused",
	"configurationset",
}

var sesContentPatterns = []string{
	"invalidparametervalue",
	"illegal header",
	"message length",
}

func (c *Classifier) classifySESError(result *ClassifiedError, errStr string) {
	if containsAny(errStr, sesRecipientPatterns) {
		// An unverified sender is an account problem, not a recipient one
		if containsAny(errStr, []string{"sender", "from address"}) && containsAny(errStr, []string{"not verified"}) {
			result.Type = ErrorTypeProvider
			result.Retryable = false
			return
		}
		result.Type = ErrorTypeRecipient
		result.Retryable = false
		return
	}

	if containsAny(errStr, sesProviderPatterns) {
		result.Type = ErrorTypeProvider
		result.Retryable = containsAny(errStr, []string{"throttl", "quota", "unavailable"})
		return
	}

	if containsAny(errStr, sesContentPatterns) {
		result.Type = ErrorTypeContent
		result.Retryable = false
		return
	}

	classifyByHTTPStatus(result)
}
