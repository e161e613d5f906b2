package synth

import "fmt"

// KPIOrder is the fixed tile order of the KPI grid.
var KPIOrder = []string{
	"reply_rate",
	"qualified_rate",
	"show_rate",
	"ats_success_rate",
	"cost_per_qualified",
	"active_candidates",
}

// KPITile is one KPI grid entry.
type KPITile struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KPIGrid normalizes a live KPI map to exactly the six ordered tiles; a
// missing value shows as "-".
func KPIGrid(live map[string]any) []KPITile {
	tiles := make([]KPITile, len(KPIOrder))
	for i, key := range KPIOrder {
		v, ok := live[key]
		if !ok || v == nil {
			tiles[i] = KPITile{Key: key, Value: "-"}
			continue
		}
		tiles[i] = KPITile{Key: key, Value: fmt.Sprint(v)}
	}
	return tiles
}
