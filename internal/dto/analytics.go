package dto

import (
	"time"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
)

// AnalyticsSummary is the dashboard payload combining the stats register with breakdowns.
type AnalyticsSummary struct {
	Stats           models.Stats          `json:"stats"`
	ByStatus        []StatusCount         `json:"byStatus"`
	ByTransportMode []TransportModeCount  `json:"byTransportMode"`
	ActiveIssues    []IssueSeverityCount  `json:"activeIssues"`
	Delays          DelayBreakdown        `json:"delays"`
	System          *models.SystemMetrics `json:"system,omitempty"`
	GeneratedAt     time.Time             `json:"generatedAt"`
}

// StatusCount is the number of parcels in one status.
type StatusCount struct {
	Status models.ParcelStatus `json:"status"`
	Count  int                 `json:"count"`
}

// TransportModeCount is the number of parcels using one transport mode.
type TransportModeCount struct {
	TransportMode models.TransportMode `json:"transportMode"`
	Count         int                  `json:"count"`
}

// IssueSeverityCount is the number of active issues at one severity.
type IssueSeverityCount struct {
	Severity models.IssueSeverity `json:"severity"`
	Count    int                  `json:"count"`
}

// DelayBreakdown attributes delayed parcels to a cause.
type DelayBreakdown struct {
	Weather int `json:"weather"`
	Traffic int `json:"traffic"`
	Other   int `json:"other"`
}
