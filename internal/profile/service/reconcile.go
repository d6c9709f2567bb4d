package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"vitae/internal/extraction"
	"vitae/internal/profile/models"
	"vitae/internal/profile/store"
	"vitae/internal/profile/upsert"
	id "vitae/pkg/domain"
	dErrors "vitae/pkg/domain-errors"
	"vitae/pkg/platform/sentinel"
	"vitae/pkg/requestcontext"
)

// Request names the document to reconcile. FallbackEmail identifies the
// Person when the extraction carries no email; when it is empty the email of
// the uploading Person is used.
type Request struct {
	DocumentID    id.DocumentID
	FallbackEmail string
}

// Counts summarizes the upsert of one category.
type Counts struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Outcome describes a finished cycle.
type Outcome struct {
	CycleID        id.CycleID
	PersonID       id.PersonID
	PersonCreated  bool
	Records        map[models.Category]Counts
	Visualizations []models.Visualization
}

// Process runs one reconciliation cycle for req.DocumentID. Extraction runs
// first, outside any transaction. Identity resolution, every category upsert
// and the move to status parsed then commit or roll back together. Artifacts
// are rendered after the commit; the document becomes complete only when all
// of them were registered. A failed cycle leaves the document status as it
// was.
func (s *Service) Process(ctx context.Context, req Request) (*Outcome, error) {
	cycleID := id.NewCycleID()
	ctx = requestcontext.WithCycleID(ctx, cycleID.String())
	ctx, span := s.tracer.Start(ctx, "reconcile.cycle")
	defer span.End()
	span.SetAttributes(
		attribute.String("cycle_id", cycleID.String()),
		attribute.Int64("document_id", int64(req.DocumentID)),
	)

	log := s.logger.With("cycle_id", cycleID.String(), "document_id", req.DocumentID)

	outcome, err := s.process(ctx, cycleID, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.IncrementCycle("failed")
		log.ErrorContext(ctx, "reconciliation cycle failed", "error", err)
		return nil, err
	}
	s.metrics.IncrementCycle("ok")
	log.InfoContext(ctx, "reconciliation cycle complete",
		"person_id", outcome.PersonID,
		"person_created", outcome.PersonCreated,
		"artifacts", len(outcome.Visualizations),
	)
	return outcome, nil
}

func (s *Service) process(ctx context.Context, cycleID id.CycleID, req Request) (*Outcome, error) {
	doc, err := s.loadDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	out, err := s.extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{CycleID: cycleID, Records: make(map[models.Category]Counts)}
	start := time.Now()
	err = s.tx.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		return s.reconcile(ctx, st, req, out, outcome)
	})
	s.metrics.ObserveCycleLatency(time.Since(start))
	if err != nil {
		return nil, translate(err, "reconciliation transaction failed")
	}
	if outcome.PersonCreated {
		s.metrics.IncrementPersonsCreated()
	}
	for cat, c := range outcome.Records {
		s.metrics.AddRecords(string(cat), "inserted", c.Inserted)
		s.metrics.AddRecords(string(cat), "updated", c.Updated)
		s.metrics.AddRecords(string(cat), "skipped", c.Skipped)
	}

	visualizations, err := s.renderArtifacts(ctx, outcome.PersonID, req.DocumentID)
	if err != nil {
		return nil, err
	}
	outcome.Visualizations = visualizations

	err = s.tx.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		d, err := st.Document(ctx, req.DocumentID)
		if err != nil {
			return err
		}
		if err := d.MarkComplete(); err != nil {
			return err
		}
		return st.UpdateDocument(ctx, d)
	})
	if err != nil {
		return nil, translate(err, "failed to complete document")
	}
	return outcome, nil
}

func (s *Service) loadDocument(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	var doc *models.Document
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		var err error
		doc, err = st.Document(ctx, docID)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, translate(err, "failed to load document")
	}
	return doc, nil
}

func (s *Service) extract(ctx context.Context, doc *models.Document) (extraction.Output, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.extract")
	defer span.End()

	out, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		span.RecordError(err)
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			return extraction.Output{}, err
		}
		return extraction.Output{}, dErrors.Wrap(err, dErrors.CodeExternal, "extraction failed")
	}
	return out, nil
}

// reconcile is the transactional body of a cycle.
func (s *Service) reconcile(ctx context.Context, st store.Store, req Request, out extraction.Output, outcome *Outcome) error {
	ctx, span := s.tracer.Start(ctx, "reconcile.upsert")
	defer span.End()

	doc, err := st.Document(ctx, req.DocumentID)
	if err != nil {
		return err
	}

	fallback := req.FallbackEmail
	if fallback == "" && doc.UploadedBy != nil {
		uploader, err := st.Person(ctx, *doc.UploadedBy)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		if uploader != nil {
			fallback = uploader.Email
		}
	}

	person, created, err := s.identity.Resolve(ctx, st, out.Result, doc, fallback)
	if err != nil {
		return err
	}
	outcome.PersonID = person.ID
	outcome.PersonCreated = created
	span.SetAttributes(attribute.Int64("person_id", int64(person.ID)))

	prof, err := st.Profile(ctx, person.ID)
	if err != nil {
		return err
	}

	r := out.Result
	u := s.upserter
	cs := &store.Changeset{
		Educations:           diff(outcome, models.CategoryEducation, u.Educations(prof.Educations, r.Education)),
		Experiences:          diff(outcome, models.CategoryExperience, u.Experiences(prof.Experiences, r.Experience)),
		Languages:            diff(outcome, models.CategoryLanguage, u.Languages(prof.Languages, r.Languages)),
		FurtherEducations:    diff(outcome, models.CategoryFurtherEducation, u.FurtherEducations(prof.FurtherEducations, r.FurtherEducation)),
		Certifications:       diff(outcome, models.CategoryCertification, u.Certifications(prof.Certifications, r.Certifications)),
		Awards:               diff(outcome, models.CategoryAward, u.Awards(prof.Awards, r.Awards)),
		Publications:         diff(outcome, models.CategoryPublication, u.Publications(prof.Publications, r.Publications)),
		PersonalAchievements: diff(outcome, models.CategoryPersonalAchievement, u.PersonalAchievements(prof.PersonalAchievements, r.PersonalAchievements)),
		PrivateMilestones:    diff(outcome, models.CategoryPrivateMilestone, u.PrivateMilestones(prof.PrivateMilestones, r.PrivateMilestones)),
	}
	if !cs.Empty() {
		if err := st.ApplyChanges(ctx, person.ID, cs); err != nil {
			return err
		}
	}

	doc.MarkParsed(out.Prompt, out.RawResponse)
	return st.UpdateDocument(ctx, doc)
}

func diff[T any](outcome *Outcome, cat models.Category, r upsert.Result[T]) store.Diff[T] {
	outcome.Records[cat] = Counts{Inserted: len(r.Inserted), Updated: len(r.Updated), Skipped: r.Skipped}
	return store.Diff[T]{Inserted: r.Inserted, Updated: r.Updated}
}

// translate keeps coded errors and wraps store facts as internal failures.
func translate(err error, msg string) error {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
