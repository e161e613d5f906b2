package synth

import "math"

// FunnelStages lists the pipeline stages in display order.
var FunnelStages = []string{"contacted", "replied", "qualified", "scheduled", "showed", "offer", "hired"}

// FunnelRow is one funnel bar.
type FunnelRow struct {
	Stage string `json:"stage"`
	Value int    `json:"value"`
}

// Funnel builds descending bars from the live contacted count, falling back
// to 100. Each stage keeps 60% of the previous one.
func Funnel(contacted *int) []FunnelRow {
	base := 100
	if contacted != nil {
		base = *contacted
	}
	rows := make([]FunnelRow, len(FunnelStages))
	for i, stage := range FunnelStages {
		rows[i] = FunnelRow{
			Stage: stage,
			Value: int(math.Round(float64(base) * math.Pow(0.6, float64(i)))),
		}
	}
	return rows
}
