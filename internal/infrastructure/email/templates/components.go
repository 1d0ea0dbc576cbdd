// Package templates provides email template components
package templates

import (
	"bytes"
	"html/template"
	"log"
	"net/url"
	"strings"
)

type ButtonProps struct {
	Text            string
	URL             string
	BackgroundColor string
	TextColor       string
}

type buttonTemplateData struct {
	BackgroundColor string
	URL             string
	TextColor       string
	Text            string
}

var (
	buttonTemplate = template.Must(template.New("emailButton").Parse(`
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="width: 100%;" width="100%">
      <tr>
        <td align="center" style="padding-bottom: 16px;">
          <a href="{{.URL}}" target="_blank" style="background-color: {{.BackgroundColor}}; border-radius: 8px; color: {{.TextColor}}; display: inline-block; font-size: 16px; font-weight: bold; padding: 16px 32px; text-decoration: none;">{{.Text}}</a>
        </td>
      </tr>
    </table>`))

	paragraphTemplate = template.Must(template.New("emailParagraph").Parse(`<p style="font-size: 16px; margin: 0; margin-bottom: 16px;">{{.}}</p>`))

	headingTemplate = template.Must(template.New("emailHeading").Parse(`<h3 style="color: #1976d2; font-size: 18px; margin: 24px 0 8px 0;">{{.}}</h3>`))

	bulletListTemplate = template.Must(template.New("emailBulletList").Parse(`<ul style="margin: 0 0 16px 0; padding-left: 24px;">{{range .}}<li style="padding: 4px 0;">{{.}}</li>{{end}}</ul>`))

	numberedListTemplate = template.Must(template.New("emailNumberedList").Parse(`<ol style="margin: 0 0 16px 0; padding-left: 24px;">{{range .}}<li style="padding: 4px 0;">{{.}}</li>{{end}}</ol>`))
)

func GetButton(props ButtonProps) string {
	sanitizedURL := sanitizeEmailURL(props.URL)
	if sanitizedURL == "" {
		log.Printf("Invalid or unsafe URL in email button: %s", props.URL)
		sanitizedURL = "#"
	}

	data := buttonTemplateData{
		BackgroundColor: sanitizeColor(orDefault(props.BackgroundColor, "#4285f4")),
		URL:             sanitizedURL,
		TextColor:       sanitizeColor(orDefault(props.TextColor, "#ffffff")),
		Text:            props.Text,
	}

	var buf bytes.Buffer
	if err := buttonTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error executing email button template: %v", err)
		return `<div style="color: red;">Button template error</div>`
	}
	return buf.String()
}

// GetParagraph renders escaped paragraph text.
func GetParagraph(text string) string {
	return render(paragraphTemplate, text)
}

// GetHeading renders an escaped section heading.
func GetHeading(text string) string {
	return render(headingTemplate, text)
}

// GetList renders items as a bulleted list, or numbered when ordered is true.
func GetList(items []string, ordered bool) string {
	if ordered {
		return render(numberedListTemplate, items)
	}
	return render(bulletListTemplate, items)
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		log.Printf("Error executing email template %s: %v", t.Name(), err)
		return ""
	}
	return buf.String()
}

// sanitizeEmailURL validates and sanitizes URLs for email use
func sanitizeEmailURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		log.Printf("Invalid email URL: %s, error: %v", rawURL, err)
		return ""
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != "http" && scheme != "https" && scheme != "mailto" {
		log.Printf("Blocked unsafe URL scheme in email: %s", scheme)
		return ""
	}
	return parsedURL.String()
}

// sanitizeColor accepts #rgb or #rrggbb and falls back to black.
func sanitizeColor(color string) string {
	color = strings.TrimSpace(color)
	if !strings.HasPrefix(color, "#") {
		return "#000000"
	}
	hex := color[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return "#000000"
	}
	for _, c := range strings.ToLower(hex) {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return "#000000"
		}
	}
	return color
}
