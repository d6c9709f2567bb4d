package artifact

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"vitae/internal/profile/models"
	"vitae/internal/timeline"
)

// TimelineRenderer draws the vertical timeline of a profile: lanes run left
// to right, time runs top to bottom.
type TimelineRenderer struct {
	root string
	cfg  config
}

func NewTimelineRenderer(root string, opts ...Option) *TimelineRenderer {
	return &TimelineRenderer{root: root, cfg: newConfig(opts)}
}

func (r *TimelineRenderer) Type() models.VisualizationType {
	return models.VisualizationTimeline
}

func (r *TimelineRenderer) Render(ctx context.Context, p *models.Profile, doc *models.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc == nil {
		return "", fmt.Errorf("render timeline: no document")
	}
	now := r.cfg.clock()
	layout := timeline.Build(timeline.Collect(p, now))
	rel := TimelinePath(doc.ID, now)
	if err := writeFile(r.root, rel, func(w io.Writer) error {
		return WriteTimelinePNG(w, layout)
	}); err != nil {
		return "", fmt.Errorf("render timeline: %w", err)
	}
	r.cfg.logger.InfoContext(ctx, "timeline written",
		"document_id", doc.ID,
		"entries", len(layout.Entries),
		"path", rel,
	)
	return rel, nil
}

const (
	canvasHeight = 900
	laneWidth    = 320
	plotLeft     = 70
	plotTop      = 60
	plotBottom   = 40
	barWidth     = 6
	markerRadius = 4
	lineHeight   = 13
)

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	ink        = color.RGBA{0x22, 0x22, 0x22, 0xff}
	grid       = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	laneColors = map[timeline.Lane]color.RGBA{
		timeline.LaneExperience:   {0x87, 0xce, 0xeb, 0xff},
		timeline.LaneEvents:       {0xff, 0xa5, 0x00, 0xff},
		timeline.LanePublications: {0x00, 0x80, 0x00, 0xff},
		timeline.LanePersonal:     {0x80, 0x00, 0x80, 0xff},
	}
)

// WriteTimelinePNG encodes layout as a PNG. An empty layout yields a canvas
// with only the title.
func WriteTimelinePNG(w io.Writer, layout timeline.Layout) error {
	width := plotLeft + max(1, len(layout.Lanes))*laneWidth
	img := image.NewRGBA(image.Rect(0, 0, width, canvasHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	text(img, width/2-16, 24, "Timeline", ink)

	if !layout.Empty() {
		first, last := layout.Span()
		first = time.Date(first.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		last = time.Date(last.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		yOf := func(t time.Time) int {
			span := last.Sub(first).Seconds()
			frac := t.Sub(first).Seconds() / span
			return plotTop + int(frac*float64(canvasHeight-plotTop-plotBottom))
		}

		for year := first.Year(); year <= last.Year(); year++ {
			y := yOf(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
			hline(img, plotLeft, width, y, grid)
			text(img, 8, y+4, strconv.Itoa(year), ink)
		}
		for i, lane := range layout.Lanes {
			text(img, plotLeft+i*laneWidth+10, plotTop-12, string(lane), ink)
		}

		for _, e := range layout.Entries {
			c := laneColors[layout.Lanes[e.Lane]]
			x := plotLeft + 10 + int(e.X*laneWidth)
			top := yOf(e.Event.Start)
			labelY := top
			if e.Kind == timeline.KindBar {
				bottom := yOf(e.Event.End)
				fill(img, image.Rect(x-barWidth/2, top, x+barWidth/2+1, max(bottom, top+1)), c)
				labelY = (top + bottom) / 2
			} else {
				disc(img, x, top, markerRadius, c)
			}
			for i, line := range strings.Split(e.Label, "\n") {
				text(img, x+8, labelY+4+i*lineHeight, line, ink)
			}
		}
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func hline(img *image.RGBA, x0, x1, y int, c color.Color) {
	fill(img, image.Rect(x0, y, x1, y+1), c)
}

func disc(img *image.RGBA, cx, cy, r int, c color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

func text(img *image.RGBA, x, y int, s string, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
