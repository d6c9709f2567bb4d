package models

import (
	"time"

	id "vitae/pkg/domain"
	dErrors "vitae/pkg/domain-errors"
)

// DocumentStatus tracks a source document through its reconciliation cycle.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusParsed   DocumentStatus = "parsed"
	DocumentStatusComplete DocumentStatus = "complete"
	DocumentStatusError    DocumentStatus = "error"
)

func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusParsed, DocumentStatusComplete, DocumentStatusError:
		return true
	}
	return false
}

// Document is an uploaded CV together with the extraction exchange that
// produced its records.
type Document struct {
	ID          id.DocumentID  `json:"id"`
	Title       string         `json:"title"`
	SourcePath  string         `json:"source_path"`
	UploadedBy  *id.PersonID   `json:"uploaded_by,omitempty"`
	Status      DocumentStatus `json:"status"`
	LLMPrompt   string         `json:"-"`
	LLMResponse string         `json:"-"`
	UploadedAt  time.Time      `json:"uploaded_at"`
}

// MarkParsed stores the extraction exchange and advances the status.
// Documents that already completed stay complete.
func (d *Document) MarkParsed(prompt, response string) {
	d.LLMPrompt = prompt
	d.LLMResponse = response
	if d.Status != DocumentStatusComplete {
		d.Status = DocumentStatusParsed
	}
}

// MarkComplete requires the document to have been parsed first.
func (d *Document) MarkComplete() error {
	switch d.Status {
	case DocumentStatusParsed, DocumentStatusComplete:
		d.Status = DocumentStatusComplete
		return nil
	}
	return dErrors.New(dErrors.CodeInvariantViolation, "document must be parsed before it completes")
}

// VisualizationType names the kind of generated artifact.
type VisualizationType string

const (
	VisualizationPDF      VisualizationType = "pdf"
	VisualizationTimeline VisualizationType = "timeline:png"
)

// Visualization registers a generated artifact against its document.
// FilePath always uses forward slashes.
type Visualization struct {
	ID         int64             `json:"id"`
	DocumentID id.DocumentID     `json:"document_id"`
	Type       VisualizationType `json:"type"`
	FilePath   string            `json:"file_path"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.UploadedBy != nil {
		u := *d.UploadedBy
		c.UploadedBy = &u
	}
	return &c
}
