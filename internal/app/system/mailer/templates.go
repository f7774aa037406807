// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// NoteEmailData holds data for new-note notification email templates.
type NoteEmailData struct {
	SiteName    string
	AuthorName  string
	SessionLink string
	IsPrivate   bool
}

// BuildNoteEmail creates a new-note notification email with both HTML and
// text bodies. The note content itself is never included; recipients follow
// the link and the visibility rules apply there.
func BuildNoteEmail(data NoteEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("%s added a note on %s", data.AuthorName, data.SiteName),
		TextBody: buildNoteText(data),
		HTMLBody: buildNoteHTML(data),
	}
}

func buildNoteText(data NoteEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s added a note to a counseling session you have access to.\n\n", data.AuthorName))
	if data.IsPrivate {
		buf.WriteString("The note is private; it may not be visible to you.\n\n")
	}
	buf.WriteString("View the session:\n")
	buf.WriteString(data.SessionLink + "\n")
	return buf.String()
}

func buildNoteHTML(data NoteEmailData) string {
	tmpl := template.Must(template.New("note").Parse(noteHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const noteHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New Session Note</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #0d9488;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                <strong>{{.AuthorName}}</strong> added a note to a counseling session you have access to.
              </p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.SessionLink}}" style="display: inline-block; padding: 14px 32px; background-color: #0d9488; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      View Session
                    </a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                You received this because you are connected to this counseling session.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
