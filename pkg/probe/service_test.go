package probe

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/domzcondes/opsmon/pkg/logging"
)

func probeLogger() *logging.Logger {
	l := logging.NewLogger(logging.ERROR, false)
	l.SetOutput(io.Discard)
	return l
}

func TestServiceProbe_AliveMarker(t *testing.T) {
	targets := []ServiceTarget{
		{Environment: "DEV", Command: "echo", Args: []string{"Service [is_dev] Integration Service is alive"}},
		{Environment: "SIT", Command: "echo", Args: []string{"Service [is_sit] is DOWN"}},
	}
	p := NewServiceProbe(targets, "", 5*time.Second, probeLogger())

	statuses := p.Check(context.Background())
	if len(statuses) != 2 {
		t.Fatalf("expected one status per target, got %d", len(statuses))
	}
	if statuses[0].Environment != "DEV" || !statuses[0].Reachable {
		t.Errorf("DEV should be reachable, got %+v", statuses[0])
	}
	if statuses[1].Reachable {
		t.Error("SIT output lacks the alive marker and must be unreachable")
	}
}

func TestServiceProbe_CommandFailure(t *testing.T) {
	targets := []ServiceTarget{
		{Environment: "PRD", Command: "/nonexistent/pmcmd"},
	}
	p := NewServiceProbe(targets, "", 5*time.Second, probeLogger())

	statuses := p.Check(context.Background())
	if len(statuses) != 1 {
		t.Fatalf("a failed command must still yield a status row, got %d", len(statuses))
	}
	if statuses[0].Reachable {
		t.Error("unrunnable status command must report unreachable")
	}
}

func TestServiceProbe_CustomMarker(t *testing.T) {
	targets := []ServiceTarget{
		{Environment: "DEV", Command: "echo", Args: []string{"service running normally"}},
	}
	p := NewServiceProbe(targets, "running normally", 5*time.Second, probeLogger())

	statuses := p.Check(context.Background())
	if !statuses[0].Reachable {
		t.Error("custom marker in output should report reachable")
	}
}
