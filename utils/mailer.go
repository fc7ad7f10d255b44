package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"
)

type EmailData struct {
	Subject  string
	To       []string
	CC       []string
	Template string
	Data     interface{}
}

// ProspectEmail is the template data of the "prospect" template.
type ProspectEmail struct {
	Subject string
	Content string
	SentBy  string
	Year    int
}

// Embedded email templates
var emailTemplates = map[string]*template.Template{
	"prospect": template.Must(template.New("prospect").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .content { margin: 20px 0; white-space: pre-line; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="content">{{.Content}}</div>
    <div class="footer">
        <p>© {{.Year}} DA Valores</p>
    </div>
</body>
</html>`)),
}

// Mailer delivers outgoing email.
type Mailer interface {
	Send(data EmailData) error
}

// SMTPMailer sends email through an SMTP relay with gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(data EmailData) error {
	msg, err := BuildMessage(m.from, data)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

// BuildMessage renders data into a message sent from the given address.
func BuildMessage(from string, data EmailData) (*gomail.Message, error) {
	tmpl, ok := emailTemplates[data.Template]
	if !ok {
		return nil, fmt.Errorf("template '%s' not found", data.Template)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return nil, fmt.Errorf("error executing template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", data.To...)
	if len(data.CC) > 0 {
		m.SetHeader("Cc", data.CC...)
	}
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())
	return m, nil
}

// NewProspectEmail prepares the message for a CRM email to one prospect.
func NewProspectEmail(to, subject, content, sentBy string) EmailData {
	return EmailData{
		Subject:  subject,
		To:       []string{to},
		Template: "prospect",
		Data: ProspectEmail{
			Subject: subject,
			Content: content,
			SentBy:  sentBy,
			Year:    time.Now().Year(),
		},
	}
}
