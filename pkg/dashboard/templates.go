package dashboard

import (
	"html/template"
	"net/http"

	"github.com/domzcondes/opsmon/pkg/report"
	"github.com/domzcondes/opsmon/pkg/usage"
)

type indexView struct {
	Title   string
	Summary *report.Summary
}

type usageView struct {
	Title   string
	Samples []usage.Sample
	Latest  []usage.Sample
}

const layoutHTML = `<!DOCTYPE html>
<html>
<head>
<title>opsmon | {{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; background: #f7f7f7; }
nav a { margin-right: 1em; }
table { border-collapse: collapse; background: #fff; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #e8e8e8; }
.ok { color: #1a7f37; }
.bad { color: #cf222e; }
</style>
</head>
<body>
<nav>
<a href="/">Overview</a>
<a href="/workflows">Workflows</a>
<a href="/jobs">Jobs</a>
<a href="/usage">Usage</a>
</nav>
<h1>{{.Title}}</h1>
{{template "content" .}}
</body>
</html>`

const indexHTML = `{{define "content"}}
<p>Reporting window ending {{.Summary.Date.Format "January 2, 2006 15:04"}}</p>
<h2>Integration Services</h2>
<table>
<tr><th>Environment</th><th>Status</th></tr>
{{range .Summary.Services}}
<tr><td>{{.Environment}}</td><td>{{if .Reachable}}<span class="ok">reachable</span>{{else}}<span class="bad">unreachable</span>{{end}}</td></tr>
{{end}}
</table>
<h2>Run Counts</h2>
<table>
<tr><th>Source</th><th>Total</th><th>Failed</th></tr>
<tr><td>Workflows</td><td>{{.Summary.Workflows.Total}}</td><td>{{.Summary.Workflows.Failed}}</td></tr>
<tr><td>Sessions</td><td>{{.Summary.Sessions.Total}}</td><td>{{.Summary.Sessions.Failed}}</td></tr>
<tr><td>Batch Jobs</td><td>{{.Summary.Jobs.Total}}</td><td>{{.Summary.Jobs.Failed}}</td></tr>
</table>
<h2>Environments</h2>
<table>
<tr><th>Environment</th><th>Passing</th><th>Failing</th></tr>
{{range .Summary.Environments}}
<tr><td>{{.Environment}}</td><td class="ok">{{.Passing}}</td><td class="bad">{{.Failing}}</td></tr>
{{end}}
</table>
{{end}}`

const workflowsHTML = `{{define "content"}}
<h2>Workflows ({{.Summary.Workflows.Failed}} / {{.Summary.Workflows.Total}} failed)</h2>
<table>
<tr><th>Workflow</th><th>Group</th><th>Started</th><th>Status</th></tr>
{{range .Summary.WorkflowRecords}}
<tr><td>{{.ItemName}}</td><td>{{.GroupName}}</td><td>{{.StartTime.Format "2006-01-02 15:04"}}</td><td>{{if eq .Status "succeeded"}}<span class="ok">{{.Status}}</span>{{else}}<span class="bad">{{.Status}}</span>{{end}}</td></tr>
{{end}}
</table>
<h2>Sessions ({{.Summary.Sessions.Failed}} / {{.Summary.Sessions.Total}} failed)</h2>
<table>
<tr><th>Session</th><th>Group</th><th>Started</th><th>Status</th></tr>
{{range .Summary.SessionRecords}}
<tr><td>{{.ItemName}}</td><td>{{.GroupName}}</td><td>{{.StartTime.Format "2006-01-02 15:04"}}</td><td>{{if eq .Status "succeeded"}}<span class="ok">{{.Status}}</span>{{else}}<span class="bad">{{.Status}}</span>{{end}}</td></tr>
{{end}}
</table>
{{end}}`

const jobsHTML = `{{define "content"}}
<h2>Batch Jobs ({{.Summary.Jobs.Failed}} / {{.Summary.Jobs.Total}} failed, {{.Summary.TotalRejects}} rejects)</h2>
<table>
<tr><th>Job</th><th>Status</th><th>Ran</th></tr>
{{range .Summary.JobItems}}
<tr><td>{{.Name}}</td><td>{{if eq .Outcome "succeeded"}}<span class="ok">{{.Outcome}}</span>{{else}}<span class="bad">{{.Outcome}}</span>{{end}}</td><td>{{if .Fetched}}yes{{else}}no{{end}}</td></tr>
{{end}}
</table>
<h2>Deployments</h2>
{{range .Summary.Environments}}
<h3>{{.Environment}}</h3>
<table>
<tr><th>Deployment</th><th>OK</th><th>Enabled</th></tr>
{{range .Deployments}}
<tr><td>{{.Name}}</td><td>{{if .OK}}<span class="ok">yes</span>{{else}}<span class="bad">no</span>{{end}}</td><td>{{if .Enabled}}yes{{else}}no{{end}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}`

const usageHTML = `{{define "content"}}
<h2>Latest Readings</h2>
<table>
<tr><th>Metric</th><th>Value</th><th>Threshold</th><th>Healthy</th></tr>
{{range .Latest}}
<tr><td>{{.Metric}}</td><td>{{printf "%.1f" .Value}}</td><td>{{printf "%.0f" .Threshold}}</td><td>{{if .Healthy}}<span class="ok">yes</span>{{else}}<span class="bad">no</span>{{end}}</td></tr>
{{end}}
</table>
<h2>Last 24 Hours</h2>
<table>
<tr><th>Timestamp</th><th>Metric</th><th>Value</th></tr>
{{range .Samples}}
<tr><td>{{.Timestamp.Format "2006-01-02 15:04"}}</td><td>{{.Metric}}</td><td>{{printf "%.1f" .Value}}</td></tr>
{{end}}
</table>
{{end}}`

var (
	indexTemplate     = template.Must(template.Must(template.New("layout").Parse(layoutHTML)).Parse(indexHTML))
	workflowsTemplate = template.Must(template.Must(template.New("layout").Parse(layoutHTML)).Parse(workflowsHTML))
	jobsTemplate      = template.Must(template.Must(template.New("layout").Parse(layoutHTML)).Parse(jobsHTML))
	usageTemplate     = template.Must(template.Must(template.New("layout").Parse(layoutHTML)).Parse(usageHTML))
)

func (s *Server) renderPage(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.log.Error("template render failed", map[string]interface{}{"error": err.Error()})
	}
}
