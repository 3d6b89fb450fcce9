// Package templates provides email template components
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// LeadNotificationProps carries the fields rendered into the internal
// lead notification email.
type LeadNotificationProps struct {
	FirstName string
	Email     string
	Company   string
	Interest  string
	Message   string
	Channel   string
}

var (
	paragraphTemplate = template.Must(template.New("emailParagraph").Parse(
		`<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">{{.}}</p>`))

	leadNotificationTemplate = template.Must(template.New("leadNotification").Parse(`
<h2 style="font-family: Helvetica, sans-serif; font-size: 20px; margin: 0 0 16px;">New lead: {{.FirstName}}</h2>
<table role="presentation" border="0" cellpadding="4" cellspacing="0" style="font-family: Helvetica, sans-serif; font-size: 16px;">
  <tr><td style="color: #9a9ea6;">Email</td><td>{{.Email}}</td></tr>
  {{if .Company}}<tr><td style="color: #9a9ea6;">Company</td><td>{{.Company}}</td></tr>{{end}}
  {{if .Interest}}<tr><td style="color: #9a9ea6;">Interest</td><td>{{.Interest}}</td></tr>{{end}}
  {{if .Channel}}<tr><td style="color: #9a9ea6;">Channel</td><td>{{.Channel}}</td></tr>{{end}}
</table>
{{if .Message}}<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 16px 0 0;">{{.Message}}</p>{{end}}`))
)

// GetParagraph renders a single escaped paragraph.
func GetParagraph(text string) string {
	var buf bytes.Buffer
	if err := paragraphTemplate.Execute(&buf, text); err != nil {
		log.Printf("Error executing paragraph template: %v", err)
		return ""
	}
	return buf.String()
}

// GetLeadNotificationContent renders the body of the internal lead
// notification email. All fields are user-supplied and escaped.
func GetLeadNotificationContent(props LeadNotificationProps) string {
	var buf bytes.Buffer
	if err := leadNotificationTemplate.Execute(&buf, props); err != nil {
		log.Printf("Error executing lead notification template: %v", err)
		return ""
	}
	return buf.String()
}
