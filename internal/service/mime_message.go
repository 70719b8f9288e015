package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/Notifuse/ampmailer/internal/domain"
)

// buildMIMEMessage assembles a multipart/alternative message with the plain
// text, AMP and HTML parts in that order. AMP-capable clients pick the AMP
// part; the HTML part must stay last.
func buildMIMEMessage(req domain.SendEmailRequest) (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())
	if req.From.Name != "" {
		if err := msg.FromFormat(req.From.Name, req.From.Email); err != nil {
			return nil, fmt.Errorf("invalid sender: %w", err)
		}
	} else if err := msg.From(req.From.Email); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(req.To); err != nil {
		return nil, fmt.Errorf("invalid recipient email: %w", err)
	}
	msg.Subject(req.Subject)
	msg.SetMessageID()
	msg.SetDate()

	msg.SetBodyString(mail.TypeTextPlain, req.PlainText())
	msg.AddAlternativeString(mail.ContentType(domain.ContentTypeAMPHTML), req.AMPHTML)
	msg.AddAlternativeString(mail.TypeTextHTML, req.HTML)

	return msg, nil
}

// messageID returns the Message-ID header without angle brackets
func messageID(msg *mail.Msg) string {
	ids := msg.GetGenHeader(mail.HeaderMessageID)
	if len(ids) == 0 {
		return ""
	}
	return strings.Trim(ids[0], "<>")
}

// renderMIMEMessage serialises msg to RFC 5322 bytes
func renderMIMEMessage(msg *mail.Msg) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render message: %w", err)
	}
	return buf.Bytes(), nil
}
