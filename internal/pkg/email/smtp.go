// internal/pkg/email/smtp.go
package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"
)

// send delivers a message over SMTP. Attachments are wrapped in a
// simple multipart/mixed envelope.
func (s *Service) send(msg *Message) error {
	cfg := s.config.External.Email
	if cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host")
	}

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	var body bytes.Buffer
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	body.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachment) == 0 {
		body.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
		body.WriteString(msg.HTMLContent)
	} else {
		const boundary = "storefront-mail-boundary"
		body.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary))

		body.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		body.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
		body.WriteString(msg.HTMLContent)
		body.WriteString("\r\n")

		body.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		body.WriteString("Content-Type: application/pdf\r\n")
		body.WriteString("Content-Transfer-Encoding: base64\r\n")
		body.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", msg.AttachmentName))

		encoded := base64.StdEncoding.EncodeToString(msg.Attachment)
		for len(encoded) > 76 {
			body.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		body.WriteString(encoded + "\r\n")
		body.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, cfg.FromEmail, msg.To, body.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
