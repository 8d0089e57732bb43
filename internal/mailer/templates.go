package mailer

import (
	"fmt"
	"html"
)

func PasswordReset(from, to, name, resetURL string) Message {
	body := fmt.Sprintf(`<h2>Hello %s</h2>
<p>Please use the url below to reset your password.</p>
<p>This reset link is valid for only 30 minutes.</p>
<a href="%s" clicktracking=off>%s</a>
<p>Regards...</p>
<p>Inventory Team</p>`, html.EscapeString(name), html.EscapeString(resetURL), html.EscapeString(resetURL))

	return Message{
		From:    from,
		To:      to,
		Subject: "Password Reset Request",
		HTML:    body,
	}
}
