package templates

import (
	"fmt"
	"html"
	"strings"
)

// StationSiteURL is linked from the footer of every email
const StationSiteURL = "https://radiosantana.com"

// textToHTML escapes plain text and keeps its line breaks
func textToHTML(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

// renderLayout wraps an already safe HTML body in the station layout
func renderLayout(subject, htmlBody string) string {
	safeSubject := html.EscapeString(subject)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" lang="es">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #0b0614; }
    .container { max-width: 600px; margin: 0 auto; background-color: #160d26; }
    .header { background: linear-gradient(135deg, #f97316 0%%, #db2777 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #e5e7eb; line-height: 1.6; font-size: 15px; }
    .quote { border-left: 4px solid #f97316; margin: 20px 0; padding: 10px 20px; background: rgba(249, 115, 22, 0.08); color: #f3f4f6; }
    .meta { color: #9ca3af; font-size: 13px; }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid rgba(255,255,255,0.1); }
    .footer a { color: #f97316; text-decoration: none; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>&copy; RadioOnline Santana | <a href="%s">radiosantana.com</a></p>
      <p>La música que te acompaña, las 24 horas.</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, htmlBody, StationSiteURL)
}
