package synth

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Job is a display-ready job posting.
type Job struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Shift    string `json:"shift"`
	PayBand  string `json:"pay_band,omitempty"`
}

// Candidate is a display-ready candidate row.
type Candidate struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Role   string `json:"role,omitempty"`
}

// liveIDSpace namespaces the name-based ids given to live records that
// arrive without one.
var liveIDSpace = uuid.MustParse("6f1c2a4e-9b7d-4c3e-8a51-2d0f7e6b9c13")

// Synthesizer pads sparse live collections with deterministic records and
// cleans placeholder fields. It holds no mutable state.
type Synthesizer struct {
	tables Tables
}

// New returns a Synthesizer over the given reference tables.
func New(tables Tables) *Synthesizer {
	return &Synthesizer{tables: tables}
}

// Default returns a Synthesizer over DefaultTables.
func Default() *Synthesizer {
	return New(DefaultTables())
}

// IsPlaceholder reports whether a backend field should be replaced: empty or
// shorter than two code points. Whitespace counts.
func IsPlaceholder(s string) bool {
	return utf8.RuneCountInString(s) < 2
}

// Jobs sanitizes live and pads it to target with synthetic postings. The
// result has length max(len(live), target) unless a reference table is empty,
// in which case only the live records are returned.
func (s *Synthesizer) Jobs(live []Job, target int) []Job {
	out := make([]Job, 0, max(len(live), target))
	for i, j := range live {
		out = append(out, s.sanitizeJob(j, i))
	}
	for i := len(out); i < target; i++ {
		j, ok := s.syntheticJob(i)
		if !ok {
			break
		}
		out = append(out, j)
	}
	return out
}

// Candidates sanitizes live and pads it to target with synthetic candidates.
func (s *Synthesizer) Candidates(live []Candidate, target int) []Candidate {
	out := make([]Candidate, 0, max(len(live), target))
	for i, c := range live {
		out = append(out, s.sanitizeCandidate(c, i))
	}
	for i := len(out); i < target; i++ {
		c, ok := s.syntheticCandidate(i)
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

func (s *Synthesizer) syntheticJob(i int) (Job, bool) {
	id := "demo-" + strconv.Itoa(i)
	title, ok1 := Pick(s.tables.Titles, fieldKey(id, "title"))
	loc, ok2 := Pick(s.tables.Locations, fieldKey(id, "location"))
	shift, ok3 := Pick(s.tables.Shifts, fieldKey(id, "shift"))
	if !ok1 || !ok2 || !ok3 {
		return Job{}, false
	}
	band, _ := Pick(s.tables.PayBands, fieldKey(id, "pay_band"))
	return Job{ID: id, Title: title, Location: loc, Shift: shift, PayBand: band}, true
}

func (s *Synthesizer) syntheticCandidate(i int) (Candidate, bool) {
	id := "cand-" + strconv.Itoa(i)
	name, ok1 := Pick(s.tables.Names, fieldKey(id, "name"))
	status, ok2 := Pick(s.tables.Statuses, fieldKey(id, "status"))
	if !ok1 || !ok2 {
		return Candidate{}, false
	}
	role, _ := Pick(s.tables.Roles, fieldKey(id, "role"))
	return Candidate{ID: id, Name: name, Status: status, Role: role}, true
}

func (s *Synthesizer) sanitizeJob(j Job, pos int) Job {
	if IsPlaceholder(j.ID) {
		j.ID = liveID("job", pos, j.Title, j.Location, j.Shift)
	}
	j.Title = s.fill(j.Title, s.tables.Titles, j.ID, "title")
	if alias, ok := s.tables.CityAlias[strings.TrimSpace(j.Location)]; ok {
		j.Location = alias
	}
	j.Location = s.fill(j.Location, s.tables.Locations, j.ID, "location")
	if alias, ok := s.tables.ShiftAlias[strings.TrimSpace(j.Shift)]; ok {
		j.Shift = alias
	}
	j.Shift = s.fill(j.Shift, s.tables.Shifts, j.ID, "shift")
	if j.PayBand != "" {
		j.PayBand = s.fill(j.PayBand, s.tables.PayBands, j.ID, "pay_band")
	}
	return j
}

func (s *Synthesizer) sanitizeCandidate(c Candidate, pos int) Candidate {
	if IsPlaceholder(c.ID) {
		c.ID = liveID("candidate", pos, c.Name, c.Status)
	}
	c.Name = s.fill(c.Name, s.tables.Names, c.ID, "name")
	c.Status = s.fill(c.Status, s.tables.Statuses, c.ID, "status")
	if c.Role != "" {
		c.Role = s.fill(c.Role, s.tables.Roles, c.ID, "role")
	}
	return c
}

// fill keeps v unless it is a placeholder, in which case a value is picked
// from table with the record's identity. An empty table leaves v untouched.
func (s *Synthesizer) fill(v string, table []string, id, field string) string {
	if !IsPlaceholder(v) {
		return v
	}
	if picked, ok := Pick(table, fieldKey(id, field)); ok {
		return picked
	}
	return v
}

func fieldKey(id, field string) string {
	return id + "/" + field
}

// liveID derives a stable id for a live record that came without one.
func liveID(kind string, pos int, fields ...string) string {
	name := fmt.Sprintf("%s|%d|%s", kind, pos, strings.Join(fields, "|"))
	return "live-" + uuid.NewSHA1(liveIDSpace, []byte(name)).String()
}
