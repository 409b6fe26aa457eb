package user

import (
	"fmt"
	"strings"
)

// GmailSuffix is the only domain accepted under EmailPolicyGmail.
const GmailSuffix = "@gmail.com"

// EmailPolicy controls which email addresses are accepted beyond basic syntax.
type EmailPolicy string

const (
	// EmailPolicyStandard accepts any syntactically valid address.
	EmailPolicyStandard EmailPolicy = "standard"
	// EmailPolicyGmail additionally requires the address to end with GmailSuffix.
	EmailPolicyGmail EmailPolicy = "gmail"
)

// ParseEmailPolicy converts a configuration value into an EmailPolicy.
func ParseEmailPolicy(s string) (EmailPolicy, error) {
	switch EmailPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case EmailPolicyStandard:
		return EmailPolicyStandard, nil
	case EmailPolicyGmail, "":
		return EmailPolicyGmail, nil
	default:
		return "", fmt.Errorf("unknown email policy %q", s)
	}
}

// Check returns an error when email is not allowed by the policy.
// Syntax is validated separately.
func (p EmailPolicy) Check(email string) error {
	if p == EmailPolicyGmail && !strings.HasSuffix(email, GmailSuffix) {
		return fmt.Errorf("email must use %s", GmailSuffix)
	}
	return nil
}
