package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vitae/pkg/domain"
	dErrors "vitae/pkg/domain-errors"
)

func TestNewPerson(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("normalizes email and keeps core fields", func(t *testing.T) {
		p := NewPerson("  Jane.Doe@Example.COM ", Core{FullName: "Jane Q. Doe", GitHub: "janedoe"}, now)
		assert.Equal(t, "jane.doe@example.com", p.Email)
		assert.Equal(t, "Jane Q. Doe", p.FullName)
		assert.Equal(t, "janedoe", p.GitHub)
		assert.Equal(t, now, p.CreatedAt)
	})

	t.Run("derives name from email when missing", func(t *testing.T) {
		p := NewPerson("jane.doe@example.com", Core{}, now)
		assert.Equal(t, "Jane Doe", p.FullName)
	})
}

func TestPersonLinkDocument(t *testing.T) {
	now := time.Now()
	p := &Person{}
	assert.False(t, p.LinkDocument(0, now))
	assert.True(t, p.LinkDocument(3, now))
	require.NotNil(t, p.DocumentID)
	assert.Equal(t, id.DocumentID(3), *p.DocumentID)
	assert.False(t, p.LinkDocument(3, now))
	assert.True(t, p.LinkDocument(4, now))
}

func TestPersonFillFrom(t *testing.T) {
	doc := id.DocumentID(9)
	canonical := &Person{FullName: "Jane", Phone: ""}
	dup := &Person{FullName: "Janet", Phone: "+44 1", DocumentID: &doc}

	assert.True(t, canonical.FillFrom(dup))
	assert.Equal(t, "Jane", canonical.FullName)
	assert.Equal(t, "+44 1", canonical.Phone)
	require.NotNil(t, canonical.DocumentID)
	assert.Equal(t, doc, *canonical.DocumentID)
	assert.False(t, canonical.FillFrom(dup))
}

func TestDocumentLifecycle(t *testing.T) {
	d := &Document{Status: DocumentStatusPending}

	err := d.MarkComplete()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	d.MarkParsed("prompt", "{}")
	assert.Equal(t, DocumentStatusParsed, d.Status)
	assert.Equal(t, "prompt", d.LLMPrompt)

	require.NoError(t, d.MarkComplete())
	assert.Equal(t, DocumentStatusComplete, d.Status)

	d.MarkParsed("again", "{}")
	assert.Equal(t, DocumentStatusComplete, d.Status)
}
