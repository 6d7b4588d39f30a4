package report

// ReportTemplate is the HTML template for the ratio report.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  h3 { font-size: 1rem; margin: 16px 0 8px; }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 8px; }
  td { padding: 4px 8px; border-bottom: 1px solid var(--border); }
  td.value { text-align: right; font-variant-numeric: tabular-nums; }
  td.null { color: var(--muted); }
  .chart { background: var(--section-bg); border-radius: 8px; padding: 8px; margin: 12px 0; }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title}}</h1>
  {{if .Subtitle}}<p>{{.Subtitle}}</p>{{end}}
  <p class="muted">Generated {{.GeneratedAt}}</p>
</div>
{{if not .Companies}}<p class="muted">No rows.</p>{{end}}
{{range .Companies}}
<h2>{{.Company}}</h2>
{{if .Missing}}<p class="muted">{{.Missing}} ratios could not be computed.</p>{{end}}
<div class="chart">{{.MarginChart}}</div>
{{range .Sections}}
<h3>{{.Title}}</h3>
<table>
{{range .Rows}}  <tr><td>{{.Label}}</td><td class="value{{if .Null}} null{{end}}">{{.Value}}</td></tr>
{{end}}</table>
{{end}}
{{end}}
</body>
</html>
`
