package artifact

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitae/internal/cvdoc"
	"vitae/internal/profile/dates"
	"vitae/internal/profile/models"
	"vitae/internal/timeline"
)

func profile() *models.Profile {
	return &models.Profile{
		Person: &models.Person{ID: 7, FullName: "Jane O'Doe", Email: "jane@example.com"},
		Experiences: []models.Experience{{
			Title:   "Engineer (Backend)",
			Company: "Acme",
			Start:   dates.Of(2019, time.March, 1, dates.PrecisionMonth),
		}},
		Publications: []models.Publication{{Title: "Paper", Published: dates.Of(2021, time.January, 1, dates.PrecisionYear)}},
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "pdfs/cv_Jane_O_Doe_7.pdf", PDFPath("Jane O'Doe", 7))
	assert.Equal(t, "pdfs/cv_unknown_9_9.pdf", PDFPath("  ", 9))
	assert.Equal(t, "pdfs/cv_Jürgen_Groß_1.pdf", PDFPath("Jürgen Groß", 1))

	at := time.Date(2024, time.May, 2, 12, 30, 5, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "timelines/timeline_doc_3_20240502103005.png", TimelinePath(3, at))
}

func TestPDFRenderer(t *testing.T) {
	root := t.TempDir()
	r := NewPDFRenderer(root)
	assert.Equal(t, models.VisualizationPDF, r.Type())

	rel, err := r.Render(context.Background(), profile(), &models.Document{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, "pdfs/cv_Jane_O_Doe_7.pdf", rel)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4")))
	assert.True(t, bytes.HasSuffix(data, []byte("%%EOF\n")))
	assert.Contains(t, string(data), "(Standardized Curriculum Vitae for Jane O'Doe) Tj")
	assert.Contains(t, string(data), `(Engineer \(Backend\) at Acme \(03/2019 - present\)) Tj`)

	entries, err := os.ReadDir(filepath.Join(root, "pdfs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestPDFRendererErrors(t *testing.T) {
	r := NewPDFRenderer(t.TempDir())
	_, err := r.Render(context.Background(), &models.Profile{}, nil)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, profile(), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWritePDFPaginates(t *testing.T) {
	paragraphs := make([]string, 120)
	for i := range paragraphs {
		paragraphs[i] = "Entry"
	}
	doc := cvdoc.Document{Title: "CV", Sections: []cvdoc.Section{{Title: "Long", Paragraphs: paragraphs}}}

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, doc))
	out := buf.String()

	pages := strings.Count(out, "/Type /Page ")
	require.Greater(t, pages, 1)
	assert.Contains(t, out, "/Count "+strconv.Itoa(pages))
	assert.Contains(t, out, "(2/"+strconv.Itoa(pages)+") Tj")
	assert.NotContains(t, out, "(1/"+strconv.Itoa(pages)+") Tj")
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\(b\)\\c`, escape(`a(b)\c`))
	assert.Equal(t, "x?y", escape("x→y"))
	assert.Equal(t, "tab", escape("t\tab"))
}

func TestTimelineRenderer(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2024, time.May, 2, 10, 30, 0, 0, time.UTC)
	r := NewTimelineRenderer(root, WithClock(func() time.Time { return now }))
	assert.Equal(t, models.VisualizationTimeline, r.Type())

	rel, err := r.Render(context.Background(), profile(), &models.Document{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, "timelines/timeline_doc_3_20240502103000.png", rel)

	f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, plotLeft+2*laneWidth, cfg.Width)
	assert.Equal(t, canvasHeight, cfg.Height)

	_, err = r.Render(context.Background(), profile(), nil)
	require.Error(t, err)
}

func TestWriteTimelinePNGEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTimelinePNG(&buf, timeline.Layout{}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, plotLeft+laneWidth, img.Bounds().Dx())
}
