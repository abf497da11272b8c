package probe

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/domzcondes/opsmon/pkg/logging"
	"github.com/domzcondes/opsmon/pkg/models"
)

// DefaultAliveMarker is the output fragment the vendor status command prints
// when the integration service is up
const DefaultAliveMarker = "Integration Service is alive"

// ServiceTarget is one environment's integration-service status command
type ServiceTarget struct {
	Environment string
	Command     string
	Args        []string
}

// ServiceProbe checks integration-service liveness by running each
// environment's status command and scanning its output for the alive marker.
// A probe failure or timeout yields Reachable=false, never an error: the
// cycle always gets one ServiceStatus per configured environment.
type ServiceProbe struct {
	targets []ServiceTarget
	marker  string
	timeout time.Duration
	log     *logging.Logger
}

// NewServiceProbe creates a probe over the configured environments
func NewServiceProbe(targets []ServiceTarget, marker string, timeout time.Duration, log *logging.Logger) *ServiceProbe {
	if marker == "" {
		marker = DefaultAliveMarker
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ServiceProbe{targets: targets, marker: marker, timeout: timeout, log: log}
}

// Check probes every environment in order and returns one status per target
func (p *ServiceProbe) Check(ctx context.Context) []models.ServiceStatus {
	statuses := make([]models.ServiceStatus, 0, len(p.targets))
	for _, target := range p.targets {
		statuses = append(statuses, models.ServiceStatus{
			Environment: target.Environment,
			Reachable:   p.checkOne(ctx, target),
		})
	}
	return statuses
}

func (p *ServiceProbe) checkOne(ctx context.Context, target ServiceTarget) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, target.Command, target.Args...)
	output, err := cmd.CombinedOutput()
	if err != nil && len(output) == 0 {
		p.log.Warn("service probe failed", map[string]interface{}{
			"environment": target.Environment,
			"error":       err.Error(),
		})
		return false
	}

	alive := strings.Contains(string(output), p.marker)
	if !alive {
		p.log.Warn("integration service not alive", map[string]interface{}{
			"environment": target.Environment,
		})
	}
	return alive
}
