package timeline

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"vitae/internal/profile/models"
)

// Lane groups related categories on one horizontal band.
type Lane string

const (
	LaneExperience   Lane = "Experience"
	LaneEvents       Lane = "Events"
	LanePublications Lane = "Publications"
	LanePersonal     Lane = "Personal"
)

var laneOrder = []Lane{LaneExperience, LaneEvents, LanePublications, LanePersonal}

// LabelWidth is the column at which entry labels wrap.
const LabelWidth = 30

// StepOffset is the vertical shift applied per staggered entry.
const StepOffset = 0.05

func laneOf(cat models.Category) Lane {
	switch cat {
	case models.CategoryExperience, models.CategoryEducation:
		return LaneExperience
	case models.CategoryCertification, models.CategoryAward, models.CategoryFurtherEducation:
		return LaneEvents
	case models.CategoryPublication:
		return LanePublications
	default:
		return LanePersonal
	}
}

// staggered lanes shift each duration entry by one step so overlapping bars
// stay readable.
func staggered(l Lane) bool {
	return l == LaneExperience || l == LanePublications
}

// Kind says how an entry is drawn: duration events as bars, point events
// as markers.
type Kind string

const (
	KindBar    Kind = "bar"
	KindMarker Kind = "marker"
)

// Entry is an event placed on the canvas.
type Entry struct {
	Event Event
	Lane  int
	X     float64
	Step  int
	Kind  Kind
	Label string
}

// Layout is the positioned timeline. Lanes holds the names of non-empty lanes
// in display order; Entry.Lane indexes into it.
type Layout struct {
	Lanes   []Lane
	Entries []Entry
}

// Build places events on lanes. Empty lanes are omitted and the remaining
// ones are numbered densely. Within a lane entries are ordered by start, then
// title.
func Build(events []Event) Layout {
	byLane := make(map[Lane][]Event)
	for _, e := range events {
		l := laneOf(e.Category)
		byLane[l] = append(byLane[l], e)
	}

	var layout Layout
	for _, lane := range laneOrder {
		evs := byLane[lane]
		if len(evs) == 0 {
			continue
		}
		idx := len(layout.Lanes)
		layout.Lanes = append(layout.Lanes, lane)

		slices.SortStableFunc(evs, func(a, b Event) int {
			if c := a.Start.Compare(b.Start); c != 0 {
				return c
			}
			return cmp.Compare(a.Title, b.Title)
		})

		step := 0
		for _, e := range evs {
			entry := Entry{
				Event: e,
				Lane:  idx,
				X:     float64(idx),
				Kind:  KindMarker,
				Label: Wrap(e.Title, LabelWidth),
			}
			if !e.Point() {
				entry.Kind = KindBar
				if staggered(lane) {
					entry.Step = step
					entry.X = float64(idx) + float64(step)*StepOffset
					step++
				}
			}
			layout.Entries = append(layout.Entries, entry)
		}
	}
	return layout
}

// Empty reports whether the layout has nothing to draw.
func (l Layout) Empty() bool {
	return len(l.Entries) == 0
}

// Span returns the earliest start and the latest end, or start for point
// events. Both are zero for an empty layout.
func (l Layout) Span() (time.Time, time.Time) {
	var first, last time.Time
	for i, e := range l.Entries {
		end := e.Event.End
		if e.Event.Point() {
			end = e.Event.Start
		}
		if i == 0 || e.Event.Start.Before(first) {
			first = e.Event.Start
		}
		if i == 0 || end.After(last) {
			last = end
		}
	}
	return first, last
}

// Wrap breaks s into lines of at most width columns at word boundaries.
// Words longer than width are kept whole on their own line.
func Wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var (
		b       strings.Builder
		lineLen int
	)
	for i, w := range words {
		n := len([]rune(w))
		switch {
		case i == 0:
		case lineLen+1+n > width:
			b.WriteByte('\n')
			lineLen = 0
		default:
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(w)
		lineLen += n
	}
	return b.String()
}
