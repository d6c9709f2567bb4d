// Package pipeline feeds upload jobs to the reconciliation service.
package pipeline

import (
	"encoding/json"
	"fmt"

	id "vitae/pkg/domain"
)

// Job asks for one document to be reconciled.
type Job struct {
	DocumentID    id.DocumentID `json:"document_id"`
	FallbackEmail string        `json:"fallback_email,omitempty"`
	UploadedBy    *id.PersonID  `json:"uploaded_by,omitempty"`

	done func(processed bool)
}

// Finish reports the job back to its source. processed is false when the
// cycle was interrupted and the job should be delivered again.
func (j Job) Finish(processed bool) {
	if j.done != nil {
		j.done(processed)
	}
}

// DecodeJob parses a job message.
func DecodeJob(b []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(b, &j); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	if j.DocumentID <= 0 {
		return Job{}, fmt.Errorf("decode job: missing document_id")
	}
	return j, nil
}

// Encode serializes j for a job message.
func (j Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}
