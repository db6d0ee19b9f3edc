package mail

import (
	"fmt"
	"html"
)

// DeliveryEmailInput holds everything the purchase delivery email needs.
type DeliveryEmailInput struct {
	Name         string
	PackTitle    string
	Reference    string
	DownloadURL  string
	FTPHost      string
	FTPUsername  string
	FTPPassword  string
	SupportEmail string
}

// BuildDeliveryEmail renders the subject and HTML body of the email sent
// after a purchase is activated. When no FTP credentials were assigned the
// credentials block is replaced with a notice that they follow separately.
func BuildDeliveryEmail(in DeliveryEmailInput) (subject string, body string) {
	subject = fmt.Sprintf("Your %s download is ready", in.PackTitle)

	name := html.EscapeString(in.Name)
	if name == "" {
		name = "DJ"
	}

	credentials := `<p>Your FTP access is being prepared. We will send the credentials in a separate email shortly.</p>`
	if in.FTPUsername != "" {
		credentials = fmt.Sprintf(
			`<p>Your FTP access:</p>
<ul>
<li>Host: %s</li>
<li>Username: %s</li>
<li>Password: %s</li>
</ul>`,
			html.EscapeString(in.FTPHost),
			html.EscapeString(in.FTPUsername),
			html.EscapeString(in.FTPPassword),
		)
	}

	body = fmt.Sprintf(
		`<h2>Thank you for your purchase, %s!</h2>
<p>Your order <strong>%s</strong> for <strong>%s</strong> is confirmed.</p>
<p><a href="%s">Download your pack here</a></p>
%s
<p>Questions? Write us at %s.</p>`,
		name,
		html.EscapeString(in.Reference),
		html.EscapeString(in.PackTitle),
		in.DownloadURL,
		credentials,
		html.EscapeString(in.SupportEmail),
	)
	return subject, body
}
