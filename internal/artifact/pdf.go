package artifact

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"vitae/internal/cvdoc"
	"vitae/internal/profile/models"
	"vitae/internal/timeline"
)

// PDFRenderer writes the standardized CV of a profile.
type PDFRenderer struct {
	root string
	cfg  config
}

func NewPDFRenderer(root string, opts ...Option) *PDFRenderer {
	return &PDFRenderer{root: root, cfg: newConfig(opts)}
}

func (r *PDFRenderer) Type() models.VisualizationType {
	return models.VisualizationPDF
}

func (r *PDFRenderer) Render(ctx context.Context, p *models.Profile, _ *models.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p == nil || p.Person == nil {
		return "", fmt.Errorf("render pdf: profile has no person")
	}
	rel := PDFPath(p.Person.FullName, p.Person.ID)
	cv := cvdoc.Build(p)
	if err := writeFile(r.root, rel, func(w io.Writer) error {
		return WritePDF(w, cv)
	}); err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}
	r.cfg.logger.InfoContext(ctx, "cv pdf written", "person_id", p.Person.ID, "path", rel)
	return rel, nil
}

// A4 portrait in points.
const (
	pageWidth    = 595.0
	pageHeight   = 842.0
	marginX      = 50.0
	marginTop    = 50.0
	marginBottom = 60.0
	bodySize     = 11.0
	headingSize  = 14.0
	footerSize   = 9.0
	bodyColumns  = 90
)

type pdfOp struct {
	text string
	size float64
	bold bool
	rule bool
	y    float64
}

type pdfPage []pdfOp

// paginate flows the document onto pages. The title and contact line open
// the first page followed by a horizontal rule.
func paginate(doc cvdoc.Document) []pdfPage {
	var (
		pages []pdfPage
		cur   pdfPage
		y     = pageHeight - marginTop
	)
	newPage := func() {
		if cur != nil {
			pages = append(pages, cur)
		}
		cur = pdfPage{}
		y = pageHeight - marginTop
	}
	emit := func(text string, size float64, bold bool) {
		lead := size * 1.35
		if y-lead < marginBottom {
			newPage()
		}
		y -= lead
		cur = append(cur, pdfOp{text: text, size: size, bold: bold, y: y})
	}
	rule := func() {
		y -= 4
		cur = append(cur, pdfOp{rule: true, y: y})
		y -= 6
	}

	newPage()
	emit(doc.Title, headingSize, true)
	for _, line := range wrapLines(doc.Contact) {
		emit(line, bodySize, false)
	}
	rule()
	for _, s := range doc.Sections {
		emit(s.Title, headingSize, true)
		for _, para := range s.Paragraphs {
			for _, line := range wrapLines(para) {
				emit(line, bodySize, false)
			}
			y -= 3
		}
		y -= 4
	}
	pages = append(pages, cur)
	return pages
}

func wrapLines(s string) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		w := timeline.Wrap(para, bodyColumns)
		if w == "" {
			continue
		}
		out = append(out, strings.Split(w, "\n")...)
	}
	return out
}

// WritePDF encodes doc as a PDF 1.4 file using the standard Helvetica faces.
// Pages after the first carry a "n/N" footer.
func WritePDF(w io.Writer, doc cvdoc.Document) error {
	pages := paginate(doc)

	bw := bufio.NewWriter(w)
	pw := &pdfWriter{w: bw}
	pw.printf("%%PDF-1.4\n%%\xe2\xe3\xcf\xd3\n")

	// Object numbers: 1 catalog, 2 pages, 3 regular font, 4 bold font, then
	// a page and its content stream per page.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}
	pw.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	pw.object(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	pw.object(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	pw.object(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>")

	for i, page := range pages {
		content := pageContent(page, i+1, len(pages))
		pw.object(5+2*i, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.0f %.0f] /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>",
			pageWidth, pageHeight, 6+2*i))
		pw.stream(6+2*i, content)
	}

	xref := pw.n
	count := 5 + 2*len(pages)
	pw.printf("xref\n0 %d\n0000000000 65535 f \n", count)
	for i := 1; i < count; i++ {
		pw.printf("%010d 00000 n \n", pw.offsets[i])
	}
	pw.printf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", count, xref)
	if pw.err != nil {
		return fmt.Errorf("write pdf: %w", pw.err)
	}
	return bw.Flush()
}

func pageContent(page pdfPage, number, total int) []byte {
	var b bytes.Buffer
	for _, op := range page {
		if op.rule {
			fmt.Fprintf(&b, "0.3 w %.2f %.2f m %.2f %.2f l S\n", marginX, op.y, pageWidth-marginX, op.y)
			continue
		}
		font := "F1"
		if op.bold {
			font = "F2"
		}
		fmt.Fprintf(&b, "BT /%s %.1f Tf %.2f %.2f Td (%s) Tj ET\n", font, op.size, marginX, op.y, escape(op.text))
	}
	if number > 1 {
		footer := fmt.Sprintf("%d/%d", number, total)
		fmt.Fprintf(&b, "0.3 w %.2f %.2f m %.2f %.2f l S\n", marginX, 40.0, pageWidth-marginX, 40.0)
		fmt.Fprintf(&b, "BT /F1 %.1f Tf %.2f %.2f Td (%s) Tj ET\n", footerSize, pageWidth/2-10, 28.0, footer)
	}
	return b.Bytes()
}

// escape encodes s as a PDF literal string body. Characters outside Latin-1
// become '?'.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteByte(byte(r))
		case r < 0x20:
		case r > 0xff:
			b.WriteByte('?')
		default:
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

type pdfWriter struct {
	w       io.Writer
	n       int
	offsets map[int]int
	err     error
}

func (p *pdfWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	n, err := fmt.Fprintf(p.w, format, args...)
	p.n += n
	p.err = err
}

func (p *pdfWriter) object(num int, body string) {
	if p.offsets == nil {
		p.offsets = make(map[int]int)
	}
	p.offsets[num] = p.n
	p.printf("%d 0 obj\n%s\nendobj\n", num, body)
}

func (p *pdfWriter) stream(num int, data []byte) {
	if p.offsets == nil {
		p.offsets = make(map[int]int)
	}
	p.offsets[num] = p.n
	p.printf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", num, len(data), data)
}
