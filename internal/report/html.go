package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"

	"github.com/docker/go-units"

	"github.com/sunishkjoseph/mwhealth/internal/normalize"
)

// htmlReport is the template's view of a Document, flattened into sorted rows
// so the rendering is deterministic.
type htmlReport struct {
	GeneratedAt string
	Checks      []htmlCheck
}

type htmlCheck struct {
	Name       string
	Status     string
	Diagnostic string
	Categories []htmlCategory
}

type htmlCategory struct {
	Name    string
	Records []htmlRecord
}

type htmlRecord struct {
	Key    string
	State  string
	Health string
	Heap   string
	Detail string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Middleware Health Report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #f0f0f0; }
.status-ok { color: #2a7a2a; }
.status-partial { color: #b07a00; }
.status-failed { color: #a02020; }
.diagnostic { font-family: monospace; white-space: pre-wrap; background: #f8f8f8; padding: 0.5em; }
</style>
</head>
<body>
<h1>Middleware Health Report</h1>
<p>Generated at {{.GeneratedAt}}</p>
{{range .Checks}}
<h2>{{.Name}} <span class="status-{{.Status}}">[{{.Status}}]</span></h2>
{{if .Diagnostic}}<div class="diagnostic">{{.Diagnostic}}</div>{{end}}
{{range .Categories}}
<h3>{{.Name}}</h3>
<table>
<tr><th>Resource</th><th>State</th><th>Health</th><th>Heap</th><th>Detail</th></tr>
{{range .Records}}
<tr><td>{{.Key}}</td><td>{{.State}}</td><td>{{.Health}}</td><td>{{.Heap}}</td><td>{{.Detail}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}
</body>
</html>
`))

// WriteHTML renders the document into a timestamped HTML file and returns its
// path.
func (w *Writer) WriteHTML(doc Document) (string, error) {
	view := buildHTMLView(doc)

	name := fmt.Sprintf("middleware_health_report_%s.html", compactTimestamp(doc.GeneratedAt))
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create html report %s: %w", path, err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, view); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return path, nil
}

func buildHTMLView(doc Document) htmlReport {
	view := htmlReport{GeneratedAt: doc.GeneratedAt}

	names := make([]string, 0, len(doc.Checks))
	for name := range doc.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := doc.Checks[name]
		hc := htmlCheck{
			Name:       name,
			Status:     statusClass(entry.Status),
			Diagnostic: entry.Diagnostic,
		}

		catNames := make([]string, 0, len(entry.Categories))
		for cat := range entry.Categories {
			catNames = append(catNames, cat)
		}
		sort.Strings(catNames)

		for _, cat := range catNames {
			hc.Categories = append(hc.Categories, htmlCategory{
				Name:    cat,
				Records: categoryRows(entry.Categories[cat]),
			})
		}
		view.Checks = append(view.Checks, hc)
	}
	return view
}

func statusClass(status string) string {
	switch status {
	case "ok", "partial":
		return status
	default:
		return "failed"
	}
}

// categoryRows flattens a keyed collection into sorted display rows.
func categoryRows(value any) []htmlRecord {
	coll, ok := asStringMap(value)
	if !ok {
		return []htmlRecord{{Key: "-", Detail: fmt.Sprintf("%v", value)}}
	}

	keys := make([]string, 0, len(coll))
	for k := range coll {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]htmlRecord, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, recordRow(k, coll[k]))
	}
	return rows
}

func recordRow(key string, value any) htmlRecord {
	row := htmlRecord{Key: key}
	rec, ok := asStringMap(value)
	if !ok {
		row.Detail = fmt.Sprintf("%v", value)
		return row
	}

	row.State = fieldString(rec, "state")
	row.Health = fieldString(rec, "health")
	row.Detail = fieldString(rec, "detail")
	row.Heap = heapSummary(rec)
	return row
}

// heapSummary renders "current / max" in human units when the record carries
// heap figures in bytes.
func heapSummary(rec map[string]any) string {
	current, okCur := numberField(rec, "heapCurrent")
	limit, okMax := numberField(rec, "heapMax")
	if !okCur && !okMax {
		return ""
	}
	cur := "?"
	if okCur {
		cur = units.BytesSize(current)
	}
	m := "?"
	if okMax {
		m = units.BytesSize(limit)
	}
	return cur + " / " + m
}

func asStringMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case normalize.Collection:
		return map[string]any(v), true
	default:
		return nil, false
	}
}

func fieldString(rec map[string]any, field string) string {
	s, _ := rec[field].(string)
	return s
}

func numberField(rec map[string]any, field string) (float64, bool) {
	f, ok := rec[field].(float64)
	return f, ok
}
