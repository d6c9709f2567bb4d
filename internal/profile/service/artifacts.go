package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"vitae/internal/profile/models"
	"vitae/internal/profile/store"
	id "vitae/pkg/domain"
	dErrors "vitae/pkg/domain-errors"
)

// renderArtifacts runs every renderer concurrently. Each one reads the
// committed profile and registers its output in its own short transaction.
func (s *Service) renderArtifacts(ctx context.Context, personID id.PersonID, docID id.DocumentID) ([]models.Visualization, error) {
	results := make([]models.Visualization, len(s.renderers))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range s.renderers {
		g.Go(func() error {
			v, err := s.renderOne(gctx, r, personID, docID)
			if err != nil {
				s.metrics.IncrementArtifact(string(r.Type()), "failed")
				return fmt.Errorf("%s artifact: %w", r.Type(), err)
			}
			s.metrics.IncrementArtifact(string(r.Type()), "ok")
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, translate(err, "artifact generation failed")
	}
	return results, nil
}

func (s *Service) renderOne(ctx context.Context, r Renderer, personID id.PersonID, docID id.DocumentID) (models.Visualization, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.artifact")
	defer span.End()
	span.SetAttributes(attribute.String("type", string(r.Type())))

	var (
		prof *models.Profile
		doc  *models.Document
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		var err error
		if prof, err = st.Profile(ctx, personID); err != nil {
			return err
		}
		doc, err = st.Document(ctx, docID)
		return err
	})
	if err != nil {
		return models.Visualization{}, err
	}

	rel, err := r.Render(ctx, prof, doc)
	if err != nil {
		span.RecordError(err)
		return models.Visualization{}, dErrors.Wrap(err, dErrors.CodeInternal, "render failed")
	}

	v := models.Visualization{
		DocumentID: docID,
		Type:       r.Type(),
		FilePath:   ToSlash(rel),
		CreatedAt:  s.clock().UTC(),
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		return st.AddVisualization(ctx, &v)
	})
	if err != nil {
		return models.Visualization{}, err
	}
	return v, nil
}

// ToSlash normalizes a stored artifact path to forward slashes regardless of
// the separator the renderer used.
func ToSlash(p string) string {
	return path.Clean(strings.ReplaceAll(p, `\`, "/"))
}
