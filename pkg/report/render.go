package report

import (
	"fmt"
	"strings"
)

// dateHeader formats the header line, e.g. "March 10, 2024"
func (s *Summary) dateHeader() string {
	return s.Date.Format("January 2, 2006")
}

// RenderWorkflowChat renders the ETL half of the summary as chat markdown.
// The terse form carries the service lines and pass/fail counts; detailed
// adds the itemized workflow and session tables.
func (s *Summary) RenderWorkflowChat(detailed bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", s.dateHeader())
	b.WriteString("**🔍 ETL Monitoring Summary**\n\n")

	b.WriteString("**Service Status:**\n")
	for _, svc := range s.Services {
		glyph := "❌"
		if svc.Reachable {
			glyph = "✅"
		}
		fmt.Fprintf(&b, "%s %s\n", svc.Environment, glyph)
	}
	b.WriteString("\n")

	b.WriteString("**📦 Workflows and Sessions**\n\n")
	fmt.Fprintf(&b, "**Workflows Failed:** %d / %d\n\n", s.Workflows.Failed, s.Workflows.Total)
	fmt.Fprintf(&b, "**Sessions Failed:** %d / %d\n\n", s.Sessions.Failed, s.Sessions.Total)

	if detailed {
		b.WriteString("📊 **Workflow List:**\n```\nWorkflow Name | Status\n-----------------------\n")
		for _, rec := range s.WorkflowRecords {
			fmt.Fprintf(&b, "%s | %s\n", rec.ItemName, rec.Status.Glyph())
		}
		b.WriteString("```\n\n")

		b.WriteString("📊 **Session List:**\n```\nSession Name | Status\n-----------------------\n")
		for _, rec := range s.SessionRecords {
			fmt.Fprintf(&b, "%s | %s\n", rec.ItemName, rec.Status.Glyph())
		}
		b.WriteString("```")
	}

	return b.String()
}

// RenderJobChat renders the hub half of the summary as chat markdown.
// Detailed adds per-environment deployment tables and the canonical job
// listing; jobs on the list that did not run show the failure glyph, while
// the Failed/Total counts reflect only fetched records.
func (s *Summary) RenderJobChat(detailed bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", s.dateHeader())
	b.WriteString("**🔍 Hub Monitoring Summary**\n\n")

	b.WriteString("**Services Status**\n")
	for _, env := range s.Environments {
		fmt.Fprintf(&b, "%s %d passing | %d failing\n", env.Environment, env.Passing, env.Failing)
	}

	fmt.Fprintf(&b, "\n**📦 Batch Jobs**\n\nFailed: %d / %d\n\n", s.Jobs.Failed, s.Jobs.Total)

	if detailed {
		for _, env := range s.Environments {
			fmt.Fprintf(&b, "**%s Applications**\n```\nDeployment | Status | Enabled\n-------------------------------\n", env.Environment)
			for _, dep := range env.Deployments {
				fmt.Fprintf(&b, "%s | %s | %s\n", dep.Name, boolGlyph(dep.OK), boolGlyph(dep.Enabled))
			}
			b.WriteString("```\n\n")
		}

		b.WriteString("```\nJob Name | Status\n----------------------\n")
		for _, item := range s.JobItems {
			fmt.Fprintf(&b, "%s | %s\n", item.Name, item.Outcome.Glyph())
		}
		b.WriteString("```")
	}

	return b.String()
}

func boolGlyph(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}
