package sport

import "sort"

// BoardType classifies which board a pick was published on.
type BoardType string

const (
	BoardDaily  BoardType = "daily"
	BoardWeekly BoardType = "weekly"
	BoardOther  BoardType = "other"
)

var AllBoardTypes = map[BoardType]struct{}{
	BoardDaily:  {},
	BoardWeekly: {},
	BoardOther:  {},
}

// Sport describes one supported sport group.
type Sport struct {
	Slug        string
	Name        string
	AllowDaily  bool
	AllowWeekly bool
}

// catalog is the fixed set of app sports; slugs match the odds pipeline.
var catalog = map[string]Sport{
	"soccer":            {Slug: "soccer", Name: "Soccer", AllowDaily: true, AllowWeekly: true},
	"basketball":        {Slug: "basketball", Name: "Basketball", AllowDaily: true, AllowWeekly: true},
	"tennis":            {Slug: "tennis", Name: "Tennis", AllowDaily: true, AllowWeekly: true},
	"hockey":            {Slug: "hockey", Name: "Ice Hockey", AllowDaily: true, AllowWeekly: false},
	"american-football": {Slug: "american-football", Name: "American Football", AllowDaily: false, AllowWeekly: true},
	"baseball":          {Slug: "baseball", Name: "Baseball", AllowDaily: true, AllowWeekly: false},
	"combat":            {Slug: "combat", Name: "Combat Sports", AllowDaily: false, AllowWeekly: true},
	"golf":              {Slug: "golf", Name: "Golf", AllowDaily: false, AllowWeekly: true},
	"motor":             {Slug: "motor", Name: "Motorsport", AllowDaily: false, AllowWeekly: true},
}

// BySlug resolves a sport by its slug.
func BySlug(slug string) (Sport, bool) {
	item, ok := catalog[slug]
	return item, ok
}

// DisplayName returns the sport's display name, falling back to the slug for
// unknown sports so callers never render an empty label.
func DisplayName(slug string) string {
	if item, ok := catalog[slug]; ok {
		return item.Name
	}
	return slug
}

// All returns every supported sport ordered by slug.
func All() []Sport {
	out := make([]Sport, 0, len(catalog))
	for _, item := range catalog {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
