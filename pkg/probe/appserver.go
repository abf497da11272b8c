package probe

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/domzcondes/opsmon/pkg/logging"
	"github.com/domzcondes/opsmon/pkg/models"
)

// AppServerTarget is one environment's app-server management endpoint
type AppServerTarget struct {
	Environment string
	URL         string
	Username    string
	Password    string
	SkipVerify  bool // allow self-signed certs in non-production environments
}

// AppServerProbe queries app-server management APIs for deployment status.
// For each environment it lists the deployment names, then reads each
// deployment's runtime state. An environment that cannot be reached yields a
// single sentinel row so downstream rendering always has something to show.
type AppServerProbe struct {
	targets []AppServerTarget
	timeout time.Duration
	log     *logging.Logger
}

// NewAppServerProbe creates a probe over the configured environments
func NewAppServerProbe(targets []AppServerTarget, timeout time.Duration, log *logging.Logger) *AppServerProbe {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &AppServerProbe{targets: targets, timeout: timeout, log: log}
}

// Check probes every environment and returns deployment rows for all of them
func (p *AppServerProbe) Check(ctx context.Context) []models.Deployment {
	var deployments []models.Deployment
	for _, target := range p.targets {
		rows, err := p.checkOne(ctx, target)
		if err != nil || len(rows) == 0 {
			if err != nil {
				p.log.Warn("app server probe failed", map[string]interface{}{
					"environment": target.Environment,
					"error":       err.Error(),
				})
			}
			deployments = append(deployments, models.SentinelDeployment(target.Environment))
			continue
		}
		deployments = append(deployments, rows...)
	}
	return deployments
}

type managementOp struct {
	Operation      string              `json:"operation"`
	ChildType      string              `json:"child-type,omitempty"`
	Address        []map[string]string `json:"address,omitempty"`
	IncludeRuntime string              `json:"include-runtime,omitempty"`
}

func (p *AppServerProbe) checkOne(ctx context.Context, target AppServerTarget) ([]models.Deployment, error) {
	client := &http.Client{
		Timeout: p.timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: target.SkipVerify},
		},
	}

	var listResult struct {
		Result []string `json:"result"`
	}
	if err := p.post(ctx, client, target, managementOp{
		Operation: "read-children-names",
		ChildType: "deployment",
	}, &listResult); err != nil {
		return nil, fmt.Errorf("deployment listing failed: %w", err)
	}

	var deployments []models.Deployment
	for _, name := range listResult.Result {
		var stateResult struct {
			Result struct {
				Status  string `json:"status"`
				Enabled bool   `json:"enabled"`
			} `json:"result"`
		}
		err := p.post(ctx, client, target, managementOp{
			Operation:      "read-resource",
			Address:        []map[string]string{{"deployment": name}},
			IncludeRuntime: "true",
		}, &stateResult)
		if err != nil {
			p.log.Warn("deployment state read failed", map[string]interface{}{
				"environment": target.Environment,
				"deployment":  name,
				"error":       err.Error(),
			})
			continue
		}
		deployments = append(deployments, models.Deployment{
			Environment: target.Environment,
			Name:        name,
			OK:          stateResult.Result.Status == "OK",
			Enabled:     stateResult.Result.Enabled,
		})
	}
	return deployments, nil
}

func (p *AppServerProbe) post(ctx context.Context, client *http.Client, target AppServerTarget, op managementOp, out interface{}) error {
	body, err := json.Marshal(op)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(target.Username, target.Password)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("management API returned HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
