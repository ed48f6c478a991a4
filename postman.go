package accounts

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Message is a fully rendered mail: the service hands it to the Mailer as
// is, no templating happens past this point.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// TemplateData is what mail templates render with: the action link carrying
// the issued token, and the recipient address.
type TemplateData struct {
	URL string
	To  string
}

// MailTemplate renders a message from template data. Templates substitute
// ${url} and ${to} markers in their bodies.
type MailTemplate func(data TemplateData) Message

// MailTemplates bundles the templates for the two mailed token purposes.
type MailTemplates struct {
	Verification  MailTemplate
	PasswordReset MailTemplate
}

const defaultVerificationText = `Dear User

To verify your account, simply click the link below.

${url}

Thanks.
`

const defaultResetPasswordText = `Dear User

To reset your password, simply click the link below.

${url}

Thanks.
`

// DefaultMailTemplates returns plain-text templates for verification and
// password reset mails, sent from the given address.
func DefaultMailTemplates(from string) MailTemplates {
	return MailTemplates{
		Verification: func(data TemplateData) Message {
			return Message{
				From:    from,
				To:      data.To,
				Subject: "Verify account",
				Text:    substitute(defaultVerificationText, data),
			}
		},
		PasswordReset: func(data TemplateData) Message {
			return Message{
				From:    from,
				To:      data.To,
				Subject: "Reset password",
				Text:    substitute(defaultResetPasswordText, data),
			}
		},
	}
}

func substitute(text string, data TemplateData) string {
	if text == "" {
		return text
	}
	text = strings.ReplaceAll(text, "${url}", data.URL)
	text = strings.ReplaceAll(text, "${to}", data.To)
	return text
}

// SMTPMailer delivers messages over plain SMTP with optional auth.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
}

// NewSMTPMailer creates a Mailer against the given SMTP endpoint. Empty
// credentials disable authentication.
func NewSMTPMailer(host, port, username, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

var _ Mailer = (*SMTPMailer)(nil)

// Send assembles the wire message and submits it. The send is not retried;
// failures propagate to the caller.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled before mail send")
	default:
	}

	body := msg.Text
	contentType := "text/plain; charset=UTF-8"
	if msg.HTML != "" {
		body = msg.HTML
		contentType = "text/html; charset=UTF-8"
	}

	payload := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: %s\r\n"+
			"\r\n"+
			"%s\r\n",
		msg.From, msg.To, msg.Subject, contentType, body,
	))

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	if err := smtp.SendMail(addr, auth, msg.From, []string{msg.To}, payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to send mail")
	}

	return nil
}
