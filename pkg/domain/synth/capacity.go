package synth

import "math"

// Capacity is today's interview slot usage.
type Capacity struct {
	Available      int     `json:"available"`
	Held           int     `json:"held"`
	Confirmed      int     `json:"confirmed"`
	NoShowForecast float64 `json:"no_show_forecast"`
}

// DefaultCapacity is shown when the backend has no capacity data.
var DefaultCapacity = Capacity{Available: 160, Held: 120, Confirmed: 109, NoShowForecast: 0.21}

// CapacityOrDefault returns c, or DefaultCapacity when c is nil.
func CapacityOrDefault(c *Capacity) Capacity {
	if c == nil {
		return DefaultCapacity
	}
	return *c
}

// Utilization is confirmed over available, 0 when nothing is available.
func (c Capacity) Utilization() float64 {
	if c.Available <= 0 {
		return 0
	}
	return math.Min(1, float64(c.Confirmed)/float64(c.Available))
}

// AutoPack confirms roughly 30% of the remaining slots, at least one, and
// never beyond the available count.
func (c Capacity) AutoPack() Capacity {
	available := c.Available
	if available == 0 {
		available = DefaultCapacity.Available
	}
	delta := int(math.Round(float64(available-c.Confirmed) * 0.3))
	if delta < 1 {
		delta = 1
	}
	next := c
	next.Available = available
	next.Confirmed = min(available, c.Confirmed+delta)
	next.Held = max(c.Held, next.Confirmed)
	return next
}
