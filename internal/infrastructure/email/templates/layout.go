// Package templates provides email template layout
package templates

import (
	"bytes"
	"html/template"
	"log"
)

type EmailLayoutProps struct {
	Title         string
	Preheader     string
	Content       string
	FooterText    string
	PoweredByText string
	PoweredByURL  string
}

// Internal template data structure with safe HTML typing
type emailTemplateData struct {
	Title         string
	Preheader     string
	Content       template.HTML // pre-rendered by the component helpers
	FooterText    string
	PoweredByText string
	PoweredByURL  string
}

var emailLayoutTemplate = template.Must(template.New("emailLayout").Parse(`
<!doctype html>
<html lang="en">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>{{.Title}}</title>
    <style media="all" type="text/css">
      @media only screen and (max-width: 640px) {
        .main p, .main td, .main li { font-size: 16px !important; }
        .wrapper { padding: 8px !important; }
        .container { padding: 0 !important; width: 100% !important; }
      }
    </style>
  </head>
  <body style="font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.5; background-color: #f8f9fa; margin: 0; padding: 0;">
    <span class="preheader" style="color: transparent; display: none; height: 0; max-height: 0; opacity: 0; overflow: hidden; mso-hide: all; visibility: hidden; width: 0;">{{.Preheader}}</span>
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="background-color: #f8f9fa; width: 100%;" width="100%">
      <tr>
        <td class="container" style="max-width: 600px; padding-top: 24px; width: 600px; margin: 0 auto;" width="600" valign="top">
          <table role="presentation" border="0" cellpadding="0" cellspacing="0" class="main" style="background: #ffffff; border: 1px solid #eaebed; border-radius: 12px; width: 100%;" width="100%">
            <tr>
              <td style="background-color: #4285f4; border-radius: 12px 12px 0 0; color: #ffffff; padding: 32px 24px; text-align: center;">
                <h1 style="font-size: 24px; margin: 0;">{{.Title}}</h1>
              </td>
            </tr>
            <tr>
              <td class="wrapper" style="box-sizing: border-box; padding: 24px;" valign="top">
                {{.Content}}
              </td>
            </tr>
          </table>
          <div style="clear: both; padding: 24px 0; text-align: center; color: #5f6368; font-size: 14px;">
            {{.FooterText}}
            <br>Powered by <a href="{{.PoweredByURL}}" style="color: #5f6368; text-decoration: none;">{{.PoweredByText}}</a>
          </div>
        </td>
      </tr>
    </table>
  </body>
</html>`))

// GetEmailLayout wraps rendered content in the branded shell.
func GetEmailLayout(props EmailLayoutProps) string {
	data := emailTemplateData{
		Title:         orDefault(props.Title, "Your Ad Grant Campaigns Are Ready!"),
		Preheader:     orDefault(props.Preheader, "Your Google Ad Grant campaign files are ready to download"),
		Content:       template.HTML(props.Content),
		FooterText:    orDefault(props.FooterText, "This email was sent because you requested Google Ad Grant campaigns from Ad Grant AI."),
		PoweredByText: orDefault(props.PoweredByText, "Ad Grant AI"),
		PoweredByURL:  orDefault(props.PoweredByURL, "https://adgrant.ai"),
	}

	var buf bytes.Buffer
	if err := emailLayoutTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error executing email layout template: %v", err)
		return "<html><body>Template execution error</body></html>"
	}
	return buf.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
