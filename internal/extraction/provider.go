package extraction

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"vitae/internal/profile/models"
	dErrors "vitae/pkg/domain-errors"
)

// Output is what a provider returns for one document: the decoded result
// plus the exchange that produced it, stored on the document.
type Output struct {
	Result      Result
	Prompt      string
	RawResponse string
}

// Provider extracts structured CV data from a document.
type Provider interface {
	Extract(ctx context.Context, doc *models.Document) (Output, error)
}

// PromptTemplate is the instruction sent to a language model; %s receives the
// CV text.
const PromptTemplate = `You are an experienced expert parser.

Carefully read the CV content provided below and extract the following fields
into structured JSON. The CV may contain spelling mistakes, unusual formatting
or missing sections; infer the most likely values, including dates that
contain typos. Normalize degree names (M.Sc. -> MSc, Ph.D -> PhD).

Put private events such as marriage or childbirth into private_milestones and
keep professional achievements in personal_achievements.

Return:
- full_name, email, phone, linkedin, github, website
- education: list of {degree, field, start_date, end_date, institution}
- professional_experience: list of {title, company, start_date, end_date, location, role_type, role_description}
- languages: list of {language, proficiency_written, proficiency_spoken}
- further_education: list of {title, start_date, end_date, institution}
- certifications: list of {name, issuer, start_date, end_date}
- awards: list of {name, awarded_by, start_date, end_date}
- publications: list of {start_date, end_date, title, journal, authors}
- personal_achievements: list of {start_date, end_date, achievement, description}
- private_milestones: list of {start_date, end_date, event, description}
- short_bio: two or three sentences summarizing the person

Here is the CV:

%s
`

// RenderPrompt fills PromptTemplate with the CV text.
func RenderPrompt(cvText string) string {
	return fmt.Sprintf(PromptTemplate, strings.TrimSpace(cvText))
}

// FileProvider serves extractions that were produced ahead of time and saved
// next to the source document as "<source>.json". When a plain-text rendering
// "<source>.txt" exists it is used to record the prompt.
type FileProvider struct {
	readFile func(string) ([]byte, error)
}

func NewFileProvider() *FileProvider {
	return &FileProvider{readFile: os.ReadFile}
}

func (p *FileProvider) Extract(ctx context.Context, doc *models.Document) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, dErrors.Wrap(err, dErrors.CodeTimeout, "extraction aborted")
	}
	if doc == nil || doc.SourcePath == "" {
		return Output{}, dErrors.New(dErrors.CodeBadRequest, "document has no source path")
	}
	raw, err := p.readFile(doc.SourcePath + ".json")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Output{}, dErrors.Wrap(err, dErrors.CodeExternal, "no extraction available for document")
		}
		return Output{}, dErrors.Wrap(err, dErrors.CodeExternal, "failed to read extraction")
	}
	result, err := Decode(raw)
	if err != nil {
		return Output{}, dErrors.Wrap(err, dErrors.CodeExternal, "failed to decode extraction")
	}
	out := Output{Result: result, RawResponse: string(raw)}
	if text, err := p.readFile(doc.SourcePath + ".txt"); err == nil {
		out.Prompt = RenderPrompt(string(text))
	}
	return out, nil
}
