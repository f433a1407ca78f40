package templates

import (
	"fmt"
	"html"
	"strings"

	"github.com/caseworks/appraisal-case-api/models"
)

// RenderAlertDigestEmail generates the hourly protection alert digest. Each
// alert becomes one table row showing which field was protected, what value
// survived and what the producer tried to write over it.
func RenderAlertDigestEmail(caseID string, alerts []models.ProtectionAlert) string {
	var rows strings.Builder
	for _, a := range alerts {
		rows.WriteString(fmt.Sprintf(`
      <tr>
        <td>%s</td>
        <td>%s</td>
        <td>%s</td>
        <td>%s</td>
        <td>%s</td>
      </tr>`,
			html.EscapeString(a.Field),
			html.EscapeString(a.StoredValue),
			html.EscapeString(a.IncomingValue),
			html.EscapeString(a.Source),
			html.EscapeString(a.CreatedAt),
		))
	}

	body := fmt.Sprintf(`
    <p>Case <strong>%s</strong> recorded %d new protection alert(s). The stored
    values below were kept; the incoming values were rejected.</p>
    <table class="alerts" cellpadding="8" cellspacing="0">
      <tr>
        <th>Field</th>
        <th>Kept</th>
        <th>Rejected</th>
        <th>Source</th>
        <th>When</th>
      </tr>%s
    </table>
    <p>No action is required unless a kept value looks wrong.</p>`,
		html.EscapeString(caseID), len(alerts), rows.String())

	return renderLayout("Protection Alert Digest", body)
}

func renderLayout(safeSubject, htmlBody string) string {
	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #0a0a0f; }
    .container { max-width: 640px; margin: 0 auto; background-color: #12121f; }
    .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #e5e7eb; line-height: 1.6; font-size: 15px; }
    .alerts { width: 100%%; border-collapse: collapse; font-size: 13px; }
    .alerts th { text-align: left; color: #a5b4fc; border-bottom: 1px solid rgba(255,255,255,0.2); }
    .alerts td { border-bottom: 1px solid rgba(255,255,255,0.08); }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid rgba(255,255,255,0.1); }
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
      <p>&copy; Caseworks Appraisal | automated notice, do not reply</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, htmlBody)
}
