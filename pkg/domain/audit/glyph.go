package audit

import "strings"

// ActionKind is the closed set of action families the dashboard styles.
type ActionKind int

const (
	KindOther ActionKind = iota
	KindOutreach
	KindTranslation
	KindConsent
	KindQualification
	KindScheduling
	KindATS
	KindMessage
	KindJob
	KindCandidate
)

var kindPrefixes = []struct {
	prefix string
	kind   ActionKind
}{
	{"outreach.", KindOutreach},
	{"translation.", KindTranslation},
	{"consent.", KindConsent},
	{"qualification.", KindQualification},
	{"schedule.", KindScheduling},
	{"ats.", KindATS},
	{"message.", KindMessage},
	{"job.", KindJob},
	{"candidate.", KindCandidate},
}

// Classify maps an action tag such as "schedule.slot.hold" to its family.
func Classify(action string) ActionKind {
	for _, p := range kindPrefixes {
		if strings.HasPrefix(action, p.prefix) {
			return p.kind
		}
	}
	return KindOther
}

func (k ActionKind) String() string {
	switch k {
	case KindOutreach:
		return "outreach"
	case KindTranslation:
		return "translation"
	case KindConsent:
		return "consent"
	case KindQualification:
		return "qualification"
	case KindScheduling:
		return "scheduling"
	case KindATS:
		return "ats"
	case KindMessage:
		return "message"
	case KindJob:
		return "job"
	case KindCandidate:
		return "candidate"
	default:
		return "other"
	}
}

// Glyph is the icon and colour a row is drawn with.
type Glyph struct {
	Icon  string
	Color string
}

// GlyphFor returns the glyph of an event. The icon follows the action family
// and the colour follows the actor; both switches are total.
func GlyphFor(actor Actor, kind ActionKind) Glyph {
	var g Glyph
	switch kind {
	case KindOutreach:
		g.Icon = "📣"
	case KindTranslation:
		g.Icon = "🌐"
	case KindConsent:
		g.Icon = "✉️"
	case KindQualification:
		g.Icon = "✅"
	case KindScheduling:
		g.Icon = "📅"
	case KindATS:
		g.Icon = "🗂️"
	case KindMessage:
		g.Icon = "💬"
	case KindJob:
		g.Icon = "📄"
	case KindCandidate:
		g.Icon = "👤"
	default:
		g.Icon = "•"
	}

	switch actor {
	case ActorAgent:
		g.Color = "42"
	case ActorCandidate:
		g.Color = "39"
	case ActorSystem:
		g.Color = "245"
	default:
		g.Color = "252"
	}
	return g
}

// Glyph returns the glyph for e.
func (e Event) Glyph() Glyph {
	return GlyphFor(e.Actor, Classify(e.Action))
}
