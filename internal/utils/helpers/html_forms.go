package helpers

import (
	"fmt"
	"html"
	"time"
)

func BuildSimpleHTML(title, body string) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif; background:#f9f9f9;">
    <table width="100%%" cellpadding="0" cellspacing="0" bgcolor="#f9f9f9">
      <tr>
        <td align="center" style="padding:32px 0;">
          <table width="500" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:8px; box-shadow:0 1px 6px #eee;">
            <tr>
              <td>
                <h2 style="color:#2d74da; margin-top:0;">%s</h2>
                <div style="font-size:16px; color:#222;">%s</div>
                <hr style="margin:32px 0 16px 0; border:0; border-top:1px solid #eee;">
                <div style="font-size:12px; color:#999;">This message was generated automatically, please do not reply.</div>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, html.EscapeString(title), body)
}

// BuildPasswordResetHTML renders the reset email. ttl is shown rounded to minutes.
func BuildPasswordResetHTML(resetLink string, ttl time.Duration) string {
	link := html.EscapeString(resetLink)
	body := fmt.Sprintf(`
      <p>We received a request to reset the password for your account.</p>
      <p><a href="%s" style="display:inline-block;padding:12px 24px;background:#2d74da;color:#fff;text-decoration:none;border-radius:6px;font-weight:600;">Reset password</a></p>
      <p style="font-size:13px;color:#555;">The link is valid for %d minutes and can be used once.</p>
      <p style="font-size:12px;color:#999;margin-top:16px;">If the button does not work, copy the link: %s</p>
      <p style="font-size:12px;color:#999;">If you did not request this, you can ignore this email.</p>
    `, link, int(ttl.Round(time.Minute)/time.Minute), link)
	return BuildSimpleHTML("Password reset", body)
}
