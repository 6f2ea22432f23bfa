package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Pro League Live - Load Test Report</title>
  <style>
    body { font-family: 'Segoe UI', system-ui, sans-serif; padding: 2rem; max-width: 900px; margin: 0 auto; line-height: 1.5; }
    h1 { color: #333; font-size: 1.5rem; margin-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9rem; margin-bottom: 1.5rem; }
    pre { background: #f6f8fa; padding: 1.5rem; border-radius: 8px; overflow-x: auto; font-size: 0.85rem; border: 1px solid #e1e4e8; }
    @media print { body { padding: 1rem; } pre { white-space: pre-wrap; } }
  </style>
</head>
<body>
  <h1>Pro League Live – Load Test Report</h1>
  <p class="meta">Test: {{.Name}} | Generated: {{.Generated}}</p>
  <pre>{{.Text}}</pre>
  <p class="meta" style="margin-top: 2rem;">To save as PDF: File → Print → Save as PDF</p>
</body>
</html>
`))

// RenderHTML embeds the text summary in a printable page. The template
// escapes name and text.
func RenderHTML(name, text string, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, struct {
		Name      string
		Generated string
		Text      string
	}{
		Name:      name,
		Generated: generatedAt.UTC().Format(time.RFC3339Nano),
		Text:      text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}
	return buf.Bytes(), nil
}
