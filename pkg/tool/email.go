package tool

import "fmt"

const emailTemplate = `To: %s
Subject: %s

%s

Regards,
Enterprise AI Agent
`

// GenerateEmail renders an enterprise-style email. An empty recipient
// defaults to "Team".
func GenerateEmail(subject, body, recipient string) string {
	if recipient == "" {
		recipient = "Team"
	}
	return fmt.Sprintf(emailTemplate, recipient, subject, body)
}
