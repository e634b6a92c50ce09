package mail

import (
	"bytes"
	"html/template"
)

var verificationTemplate = template.Must(template.New("verification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #4338ca;">Verify your email address</h2>
  <p>Thank you for signing up for TrainHub. Please verify your email address to complete your registration.</p>
  <div style="margin: 30px 0;">
    <a href="{{.Link}}" style="background-color: #4338ca; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">Verify email address</a>
  </div>
  <p>If you did not create an account, you can ignore this email.</p>
  <p>This link expires in 24 hours.</p>
  <p style="margin-top: 30px; font-size: 12px; color: #666;">If the button does not work, copy and paste this link into your browser: {{.Link}}</p>
</div>
`))

var passwordResetTemplate = template.Must(template.New("reset").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #4338ca;">Reset your password</h2>
  <p>We received a request to reset the TrainHub password for {{.Email}}.</p>
  <div style="margin: 30px 0;">
    <a href="{{.Link}}" style="background-color: #4338ca; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">Reset password</a>
  </div>
  <p>If you did not ask to reset your password, you can ignore this email.</p>
  <p style="margin-top: 30px; font-size: 12px; color: #666;">If the button does not work, copy and paste this link into your browser: {{.Link}}</p>
</div>
`))

type linkData struct {
	Email string
	Link  string
}

func render(t *template.Template, email, link string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, linkData{Email: email, Link: link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
