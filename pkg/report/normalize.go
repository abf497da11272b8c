package report

import (
	"strings"

	"github.com/domzcondes/opsmon/pkg/models"
)

// NormalizeRunCode maps a workflow/session run status code from the ETL
// repository to an Outcome. The code table is fixed by the repository
// schema; anything outside it is OutcomeUnknown, never dropped.
func NormalizeRunCode(code int) models.Outcome {
	switch code {
	case 1:
		return models.OutcomeSucceeded
	case 2:
		return models.OutcomeDisabled
	case 3:
		return models.OutcomeFailed
	case 4:
		return models.OutcomeStopped
	case 5:
		return models.OutcomeAborted
	case 6:
		return models.OutcomeRunning
	case 15:
		return models.OutcomeTerminated
	default:
		return models.OutcomeUnknown
	}
}

// NormalizeJobMessage maps a hub batch-job status message to an Outcome.
// The hub only distinguishes "completed" from everything else, so this is
// intentionally a binary classifier. Do not add finer granularity here; the
// source system has none to offer.
func NormalizeJobMessage(msg string) models.Outcome {
	if strings.Contains(strings.ToLower(msg), "completed") {
		return models.OutcomeSucceeded
	}
	return models.OutcomeFailed
}
