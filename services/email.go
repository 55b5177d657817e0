package services

import (
	"bytes"
	"fmt"
	"log"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
)

// EmailQuote sends the exported quote PDF to the customer. SMTP settings
// come from the deployment configuration; a missing host is a
// configuration error, not a silent no-op.
func EmailQuote(cfg Config, to, opportunityID string, pdf []byte) error {
	if cfg.SMTPHost == "" {
		return fmt.Errorf("smtp host not configured")
	}

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	mail := mailyak.New(fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort), auth)
	mail.From(cfg.FromAddr)
	mail.To(to)
	mail.Subject(fmt.Sprintf("Your solar installation quote (%s)", opportunityID))
	mail.Plain().Set("Please find your solar installation quote attached.\n")
	mail.Attach(fmt.Sprintf("%s.pdf", opportunityID), bytes.NewReader(pdf))

	if err := mail.Send(); err != nil {
		return fmt.Errorf("send quote email to %s: %w", to, err)
	}
	log.Printf("email: quote %s sent to %s", opportunityID, to)
	return nil
}
