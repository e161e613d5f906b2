package backend

import (
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

// Health is the /health response.
type Health struct {
	OK   bool   `json:"ok"`
	Mode string `json:"mode"`
}

// VerifyResult is the /audit/verify response.
type VerifyResult struct {
	OK       bool `json:"ok"`
	Count    int  `json:"count"`
	BrokenAt *int `json:"broken_at,omitempty"`
}

type auditResponse struct {
	Events []audit.Event `json:"events"`
}

type jobsResponse struct {
	Jobs []synth.Job `json:"jobs"`
}

type candidatesResponse struct {
	Candidates []synth.Candidate `json:"candidates"`
}

type capacityResponse struct {
	Today *synth.Capacity `json:"today"`
}

type heatmapResponse struct {
	Bins struct {
		Days  []string `json:"days"`
		Hours []int    `json:"hours"`
	} `json:"bins"`
	ReplyRate [][]float64 `json:"reply_rate"`
	TTFT      [][]float64 `json:"ttft_minutes"`
}

// CreateJobRequest is the body of POST /jobs.
type CreateJobRequest struct {
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Shift    string   `json:"shift"`
	Reqs     []string `json:"reqs,omitempty"`
}

// CreateJobResponse is the body returned by POST /jobs.
type CreateJobResponse struct {
	JobID    string   `json:"job_id"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Shift    string   `json:"shift"`
	Reqs     []string `json:"reqs,omitempty"`
}

// HiringParams are the query parameters of POST /simulate/hiring. Zero
// fields are left to the backend defaults.
type HiringParams struct {
	VolPerDay           int
	ReplyRate           float64
	QualRate            float64
	ShowRate            float64
	InterviewerCapacity int
}

// HiringProjection is the POST /simulate/hiring response.
type HiringProjection struct {
	Replies      int `json:"replies"`
	Qualified    int `json:"qualified"`
	Scheduled    int `json:"scheduled"`
	Shows        int `json:"shows"`
	HiresPerWeek int `json:"hires_per_week"`
}

// SendRequest is the body of POST /send.
type SendRequest struct {
	To      string `json:"to"`
	Body    string `json:"body"`
	Locale  string `json:"locale,omitempty"`
	Channel string `json:"channel,omitempty"`
}
