package mail

import (
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
)

// Sender is the transactional-email collaborator consumed by the auth flows.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SESMailer sends through AWS SES.
type SESMailer struct {
	client *ses.SES
	from   string
}

func NewSESMailer(region, from string) (*SESMailer, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &SESMailer{client: ses.New(sess), from: from}, nil
}

func (m *SESMailer) Send(to, subject, htmlBody string) error {
	_, err := m.client.SendEmail(&ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(htmlBody),
				},
			},
		},
	})
	return err
}

// LogMailer is the local-development fallback when no mail region is
// configured: it logs instead of sending.
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("📧 [mail disabled] to=%s subject=%q", to, subject)
	return nil
}

// EmailChangeBody is the confirmation message for an e-mail change request.
// The link carries the raw one-time token; only its hash lives server-side.
func EmailChangeBody(pendingEmail, link string) string {
	return fmt.Sprintf(
		`<body style="background-color:#e3d9cf;color:rgb(73,67,62)">`+
			`<h2>We received an e-mail change request.</h2>`+
			`<p>To confirm the change and set %s as your new Raglan Generator account e-mail, please click the button below:</p>`+
			`<p><a href="%s" style="padding:0.55em;border-radius:12px;background-color:rgb(126,70,136);color:white;text-decoration:none;">Confirm new e-mail</a></p>`+
			`<p>If you did not make this request, you can reach out to support.</p>`+
			`</body>`,
		pendingEmail, link)
}

// PasswordResetBody is the message for a forgotten-password request.
func PasswordResetBody(link string) string {
	return fmt.Sprintf(
		`<body style="background-color:#e3d9cf;color:rgb(73,67,62)">`+
			`<h2>We received a password reset request.</h2>`+
			`<p>To choose a new password for your Raglan Generator account, please click the button below:</p>`+
			`<p><a href="%s" style="padding:0.55em;border-radius:12px;background-color:rgb(126,70,136);color:white;text-decoration:none;">Reset password</a></p>`+
			`<p>If you did not make this request, you can safely ignore this e-mail.</p>`+
			`</body>`,
		link)
}
