package sdk

import (
	"encoding/json"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

// Snapshot is the hireline_snapshot result.
type Snapshot struct {
	Health *struct {
		OK   bool   `json:"ok"`
		Mode string `json:"mode"`
	} `json:"health,omitempty"`
	KPI        []synth.KPITile   `json:"kpi"`
	Funnel     []synth.FunnelRow `json:"funnel"`
	Capacity   synth.Capacity    `json:"capacity"`
	Jobs       int               `json:"jobs"`
	Candidates int               `json:"candidates"`
	AuditCount int               `json:"audit_count"`
	Push       string            `json:"push"`
	UpdatedAt  string            `json:"updated_at,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// Stale reports whether the last refresh of source failed.
func (s *Snapshot) Stale(source string) bool {
	_, ok := s.Errors[source]
	return ok
}

// AuditEntry is one row of hireline_audit_tail.
type AuditEntry struct {
	audit.Event
	Kind  string `json:"kind"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// UnmarshalJSON decodes the flat wire row. The embedded Event's decoder
// would otherwise be promoted and drop the glyph fields.
func (a *AuditEntry) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &a.Event); err != nil {
		return err
	}
	var glyph struct {
		Kind  string `json:"kind"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}
	if err := json.Unmarshal(data, &glyph); err != nil {
		return err
	}
	a.Kind, a.Icon, a.Color = glyph.Kind, glyph.Icon, glyph.Color
	return nil
}

// AuditTailRequest filters hireline_audit_tail. Zero values use the server
// defaults.
type AuditTailRequest struct {
	Limit int
	Kind  string
}

// VerifyResult is the hireline_audit_verify result. Local verification
// fills Violations; the backend only reports where the chain broke.
type VerifyResult struct {
	OK         bool              `json:"ok"`
	Count      int               `json:"count"`
	BrokenAt   *int              `json:"broken_at,omitempty"`
	Violations []audit.Violation `json:"violations,omitempty"`
}

// Intact reports whether the verified window has no broken link.
func (v *VerifyResult) Intact() bool {
	return v.OK && (v.BrokenAt == nil || *v.BrokenAt < 0)
}

// HiringRequest are the hireline_simulate_hiring rates. Zero fields are
// left to the backend defaults.
type HiringRequest struct {
	VolPerDay           int     `json:"vol_per_day,omitempty"`
	ReplyRate           float64 `json:"reply_rate,omitempty"`
	QualRate            float64 `json:"qual_rate,omitempty"`
	ShowRate            float64 `json:"show_rate,omitempty"`
	InterviewerCapacity int     `json:"interviewer_capacity,omitempty"`
}

// HiringProjection is the hireline_simulate_hiring result.
type HiringProjection struct {
	Replies      int `json:"replies"`
	Qualified    int `json:"qualified"`
	Scheduled    int `json:"scheduled"`
	Shows        int `json:"shows"`
	HiresPerWeek int `json:"hires_per_week"`
}

// SchemaInfo is the hireline://schema resource.
type SchemaInfo struct {
	SchemaVersion string   `json:"schema_version"`
	ServerVersion string   `json:"server_version"`
	Tools         []string `json:"tools"`
}
