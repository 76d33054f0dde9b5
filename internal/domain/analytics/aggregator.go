package analytics

import (
	"sort"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/sport"
)

// SettledSelection is one historical settled row as stored.
type SettledSelection struct {
	SportSlug      string
	SportName      string
	BoardType      sport.BoardType
	Stake          int
	Payout         int
	EventStartTime time.Time
}

// Summary aggregates a group of settled selections.
type Summary struct {
	Selections      int
	TotalStake      int
	TotalPayout     int
	TotalNet        int
	AverageStake    float64
	ROIPercent      float64
	RecoveryPercent float64
	WinCount        int
	RefundCount     int
	LossCount       int
}

// Breakdown is a labelled summary for one grouping key.
type Breakdown struct {
	Key   string
	Label string
	Summary
}

// Dashboard is the full analytics rollup.
type Dashboard struct {
	Summary       Summary
	BySport       []Breakdown
	ByBoard       []Breakdown
	ByWeekday     []Breakdown
	ByStakeBucket []Breakdown
}

// Stake buckets classify risk appetite by stake size.
const (
	conservativeBucketMax = 300
	balancedBucketMax     = 600
)

type bucketDef struct {
	key   string
	label string
}

var stakeBuckets = []bucketDef{
	{key: "conservative", label: "Conservative (≤300)"},
	{key: "balanced", label: "Balanced (301–600)"},
	{key: "aggressive", label: "Aggressive (≥601)"},
}

var weekdays = []bucketDef{
	{key: "monday", label: "Monday"},
	{key: "tuesday", label: "Tuesday"},
	{key: "wednesday", label: "Wednesday"},
	{key: "thursday", label: "Thursday"},
	{key: "friday", label: "Friday"},
	{key: "saturday", label: "Saturday"},
	{key: "sunday", label: "Sunday"},
}

var boards = []bucketDef{
	{key: string(sport.BoardDaily), label: "Daily"},
	{key: string(sport.BoardWeekly), label: "Weekly"},
	{key: string(sport.BoardOther), label: "Other"},
}

// Build rolls settled rows up into the dashboard. Empty input yields zeroed
// summaries with the canonical fixed-order breakdowns intact.
func Build(rows []SettledSelection) Dashboard {
	return Dashboard{
		Summary:       summarize(rows),
		BySport:       bySport(rows),
		ByBoard:       fixedBreakdown(rows, boards, boardKey),
		ByWeekday:     fixedBreakdown(rows, weekdays, weekdayKey),
		ByStakeBucket: fixedBreakdown(rows, stakeBuckets, stakeBucketKey),
	}
}

func summarize(rows []SettledSelection) Summary {
	out := Summary{Selections: len(rows)}
	for _, row := range rows {
		out.TotalStake += row.Stake
		out.TotalPayout += row.Payout
		switch {
		case row.Payout > row.Stake:
			out.WinCount++
		case row.Payout == row.Stake:
			out.RefundCount++
		default:
			out.LossCount++
		}
	}
	out.TotalNet = out.TotalPayout - out.TotalStake

	if out.Selections > 0 {
		out.AverageStake = float64(out.TotalStake) / float64(out.Selections)
	}
	if out.TotalStake > 0 {
		out.ROIPercent = float64(out.TotalNet) / float64(out.TotalStake) * 100
		out.RecoveryPercent = float64(out.TotalPayout) / float64(out.TotalStake) * 100
	}
	return out
}

// bySport groups by slug and sorts by total stake descending, label ascending
// on ties. Only sports present in the data appear.
func bySport(rows []SettledSelection) []Breakdown {
	grouped := make(map[string][]SettledSelection)
	labels := make(map[string]string)
	for _, row := range rows {
		grouped[row.SportSlug] = append(grouped[row.SportSlug], row)
		if labels[row.SportSlug] == "" {
			label := row.SportName
			if label == "" {
				label = sport.DisplayName(row.SportSlug)
			}
			labels[row.SportSlug] = label
		}
	}

	out := make([]Breakdown, 0, len(grouped))
	for slug, group := range grouped {
		out = append(out, Breakdown{
			Key:     slug,
			Label:   labels[slug],
			Summary: summarize(group),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalStake != out[j].TotalStake {
			return out[i].TotalStake > out[j].TotalStake
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// fixedBreakdown keeps the canonical bucket order regardless of data volume.
func fixedBreakdown(rows []SettledSelection, defs []bucketDef, keyOf func(SettledSelection) string) []Breakdown {
	grouped := make(map[string][]SettledSelection)
	for _, row := range rows {
		key := keyOf(row)
		grouped[key] = append(grouped[key], row)
	}

	out := make([]Breakdown, 0, len(defs))
	for _, def := range defs {
		out = append(out, Breakdown{
			Key:     def.key,
			Label:   def.label,
			Summary: summarize(grouped[def.key]),
		})
	}
	return out
}

func boardKey(row SettledSelection) string {
	if _, ok := sport.AllBoardTypes[row.BoardType]; ok {
		return string(row.BoardType)
	}
	return string(sport.BoardOther)
}

// weekdayKey maps the UTC weekday of the event start to the ISO day key.
func weekdayKey(row SettledSelection) string {
	switch row.EventStartTime.UTC().Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

func stakeBucketKey(row SettledSelection) string {
	switch {
	case row.Stake <= conservativeBucketMax:
		return "conservative"
	case row.Stake <= balancedBucketMax:
		return "balanced"
	default:
		return "aggressive"
	}
}
