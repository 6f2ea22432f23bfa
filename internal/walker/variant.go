package walker

import (
	"fmt"
	"time"
)

// Variant selects which steps a walk executes.
type Variant string

const (
	Smoke  Variant = "smoke"
	Normal Variant = "normal"
	Spike  Variant = "spike"
)

// Variants lists the known variants in run order.
func Variants() []Variant {
	return []Variant{Smoke, Normal, Spike}
}

func ParseVariant(name string) (Variant, error) {
	for _, v := range Variants() {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown scenario variant %q (want smoke, normal or spike)", name)
}

// ReportName is the prefix of the report files written for the variant.
func (v Variant) ReportName() string {
	if v == Normal {
		return "main-load"
	}
	return string(v)
}

// Description is a one-line summary for listings.
func (v Variant) Description() string {
	switch v {
	case Smoke:
		return "Health and leagues only; fast connectivity gate"
	case Normal:
		return "Full leagues -> matches -> scores -> points table -> players walk"
	case Spike:
		return "Leagues -> matches -> points table -> health under a sharp ramp"
	default:
		return "Unknown scenario"
	}
}

// Pacing is the think-time inserted after each step. Zero disables a pause.
type Pacing struct {
	AfterLeagues     time.Duration
	AfterMatches     time.Duration
	AfterMatchDetail time.Duration
	AfterMatchScore  time.Duration
	AfterPointsTable time.Duration
	EndOfIteration   time.Duration
}

// Tags returns the request tags of the variant in walk order.
func (v Variant) Tags() []string {
	plan := v.plan()
	tags := make([]string, len(plan))
	for i, st := range plan {
		tags[i] = st.endpoint.Tag
	}
	return tags
}

type step struct {
	endpoint Endpoint
	// discovers is the context field read from a 200 response, if any.
	discovers Field
	pause     func(Pacing) time.Duration
}

func noPause(Pacing) time.Duration { return 0 }

// plan returns the ordered steps of a variant. Steps whose endpoint
// requires an undiscovered field are skipped at run time, which is what
// makes the walk degrade instead of fail.
func (v Variant) plan() []step {
	switch v {
	case Smoke:
		return []step{
			{endpoint: smokeHealth, pause: noPause},
			{endpoint: smokeLeague, pause: noPause},
		}
	case Spike:
		return []step{
			{endpoint: spikeLeagues, discovers: LeagueID, pause: func(p Pacing) time.Duration { return p.AfterLeagues }},
			{endpoint: spikeMatches, pause: func(p Pacing) time.Duration { return p.AfterMatches }},
			{endpoint: spikePoints, pause: noPause},
			{endpoint: spikeHealth, pause: noPause},
		}
	default:
		return []step{
			{endpoint: listLeagues, discovers: LeagueID, pause: func(p Pacing) time.Duration { return p.AfterLeagues }},
			{endpoint: listMatches, discovers: MatchID, pause: func(p Pacing) time.Duration { return p.AfterMatches }},
			{endpoint: getMatchDetail, pause: func(p Pacing) time.Duration { return p.AfterMatchDetail }},
			{endpoint: getMatchScore, pause: func(p Pacing) time.Duration { return p.AfterMatchScore }},
			{endpoint: getPointsTableMen, pause: func(p Pacing) time.Duration { return p.AfterPointsTable }},
			{endpoint: getPointsTableWomen, pause: noPause},
			{endpoint: listPlayers, pause: noPause},
		}
	}
}
