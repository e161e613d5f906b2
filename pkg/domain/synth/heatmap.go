package synth

// Band is a colour band of the SLA heatmap.
type Band int

const (
	BandLow Band = iota
	BandModerate
	BandHigh
	BandHighest
)

// Color returns the hex colour used for the band.
func (b Band) Color() string {
	switch b {
	case BandLow:
		return "#c62828"
	case BandModerate:
		return "#ef6c00"
	case BandHigh:
		return "#fdd835"
	case BandHighest:
		return "#2e7d32"
	default:
		return "#9e9e9e"
	}
}

func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandModerate:
		return "moderate"
	case BandHigh:
		return "high"
	case BandHighest:
		return "highest"
	default:
		return "unknown"
	}
}

// HeatmapInput is the live SLA payload. Any nil field falls back to defaults.
type HeatmapInput struct {
	Days      []string    `json:"days,omitempty"`
	Hours     []int       `json:"hours,omitempty"`
	ReplyRate [][]float64 `json:"reply_rate,omitempty"`
	TTFT      [][]float64 `json:"ttft_minutes,omitempty"`
}

// HeatmapCell is one day/hour bin.
type HeatmapCell struct {
	Band      Band    `json:"band"`
	ReplyRate float64 `json:"reply_rate"`
	TTFT      float64 `json:"ttft_minutes"`
}

// Heatmap is a days x hours matrix of bins.
type Heatmap struct {
	Days  []string        `json:"days"`
	Hours []int           `json:"hours"`
	Cells [][]HeatmapCell `json:"cells"`
}

var defaultDays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type bandWeight struct {
	p    float64
	band Band
}

var (
	earlyMiddayWeights = []bandWeight{{0.05, BandLow}, {0.15, BandModerate}, {0.40, BandHigh}, {0.40, BandHighest}}
	middayWeights      = []bandWeight{{0.10, BandLow}, {0.20, BandModerate}, {0.35, BandHigh}, {0.35, BandHighest}}
	lateWeights        = []bandWeight{{0.40, BandLow}, {0.30, BandModerate}, {0.20, BandHigh}, {0.10, BandHighest}}
	otherWeights       = []bandWeight{{0.20, BandLow}, {0.25, BandModerate}, {0.30, BandHigh}, {0.25, BandHighest}}
)

// BuildHeatmap lays out deterministic colour bands over the live reply-rate
// and time-to-first-touch values. Bands depend only on the cell position.
func BuildHeatmap(in HeatmapInput) Heatmap {
	days := in.Days
	if len(days) == 0 {
		days = defaultDays
	}
	hours := in.Hours
	if len(hours) == 0 {
		hours = make([]int, 24)
		for i := range hours {
			hours[i] = i
		}
	}

	cells := make([][]HeatmapCell, len(days))
	for di := range days {
		row := make([]Band, len(hours))
		for hi := range hours {
			row[hi] = cellBand(di, hi)
		}
		breakLowRuns(row)

		cells[di] = make([]HeatmapCell, len(hours))
		for hi := range hours {
			cells[di][hi] = HeatmapCell{
				Band:      row[hi],
				ReplyRate: at(in.ReplyRate, di, hi),
				TTFT:      at(in.TTFT, di, hi),
			}
		}
	}
	return Heatmap{Days: days, Hours: hours, Cells: cells}
}

func cellBand(di, hi int) Band {
	seed := (di*37 + hi*101) % 997
	r := float64((seed*9301+49297)%233280) / 233280.0

	midday := (hi >= 10 && hi <= 12) || (hi >= 17 && hi <= 20)
	late := hi < 6 || hi > 22

	switch {
	case di <= 3 && midday:
		return weightedBand(r, earlyMiddayWeights)
	case midday:
		return weightedBand(r, middayWeights)
	case late:
		return weightedBand(r, lateWeights)
	default:
		return weightedBand(r, otherWeights)
	}
}

func weightedBand(r float64, weights []bandWeight) Band {
	acc := 0.0
	for _, w := range weights {
		acc += w.p
		if r < acc {
			return w.band
		}
	}
	return weights[len(weights)-1].band
}

// breakLowRuns flips every second cell of a low run of five or more so a row
// never shows a long solid streak.
func breakLowRuns(row []Band) {
	start := 0
	for start < len(row) {
		if row[start] != BandLow {
			start++
			continue
		}
		end := start
		for end < len(row) && row[end] == BandLow {
			end++
		}
		if end-start >= 5 {
			for k := start + 1; k < end; k += 2 {
				if k%3 == 0 {
					row[k] = BandHigh
				} else {
					row[k] = BandHighest
				}
			}
		}
		start = end
	}
}

func at(m [][]float64, i, j int) float64 {
	if i < len(m) && j < len(m[i]) {
		return m[i][j]
	}
	return 0
}
