package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/satyanarayana32518/plant-disease-detection/internal/agent"
	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

// ReportService renders a finished diagnosis for download.
// We define it here to decouple from the specific report implementation.
type ReportService interface {
	Markdown(r catalog.DiagnosisRecord) ([]byte, error)
	PDF(r catalog.DiagnosisRecord) ([]byte, error)
}

// ResultFormat names a downloadable rendering of the result card.
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
)

type Service interface {
	CreateSession(ctx context.Context) (Snapshot, error)
	GetSession(ctx context.Context, id uuid.UUID) (Snapshot, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	SelectImage(ctx context.Context, id uuid.UUID, u Upload) (Message, Snapshot, error)
	// StartAnalysis reports started=false for guarded no-ops (no image, already running).
	StartAnalysis(ctx context.Context, id uuid.UUID) (started bool, snap Snapshot, err error)
	Reset(ctx context.Context, id uuid.UUID) (Snapshot, error)
	Subscribe(ctx context.Context, id uuid.UUID) (<-chan Snapshot, error)
	// KeepAlive renews the session's idle timer for clients that only watch.
	KeepAlive(ctx context.Context, id uuid.UUID) error

	Image(ctx context.Context, id uuid.UUID) (*Image, error)
	RenderResult(ctx context.Context, id uuid.UUID, format ResultFormat) ([]byte, error)
	Catalog() *catalog.Catalog
	Condition(name string) (catalog.DiagnosisRecord, error)
}

type service struct {
	repo     Repository
	catalog  *catalog.Catalog
	detector agent.Detector
	report   ReportService
	opts     []Option
}

// NewService wires the session registry, the catalog-backed detector and the
// report renderer. opts are applied to every new session.
func NewService(repo Repository, c *catalog.Catalog, detector agent.Detector, report ReportService, opts ...Option) Service {
	return &service{
		repo:     repo,
		catalog:  c,
		detector: detector,
		report:   report,
		opts:     opts,
	}
}

func (s *service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Condition returns the catalog entry for name, ignoring case.
func (s *service) Condition(name string) (catalog.DiagnosisRecord, error) {
	r, ok := s.catalog.Lookup(name)
	if !ok {
		return catalog.DiagnosisRecord{}, fmt.Errorf("%w: %q", catalog.ErrUnknownCondition, name)
	}
	return r, nil
}

func (s *service) CreateSession(ctx context.Context) (Snapshot, error) {
	o := NewOrchestrator(uuid.New(), s.detector, s.opts...)
	if err := s.repo.Save(ctx, o); err != nil {
		return Snapshot{}, err
	}
	return o.Snapshot(), nil
}

func (s *service) GetSession(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return o.Snapshot(), nil
}

func (s *service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) SelectImage(ctx context.Context, id uuid.UUID, u Upload) (Message, Snapshot, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Message{}, Snapshot{}, err
	}
	msg, err := o.SelectImage(u)
	if err != nil {
		return Message{}, Snapshot{}, err
	}
	return msg, o.Snapshot(), nil
}

func (s *service) StartAnalysis(ctx context.Context, id uuid.UUID) (bool, Snapshot, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, Snapshot{}, err
	}
	err = o.StartAnalysis()
	switch {
	case err == nil:
		return true, o.Snapshot(), nil
	case errors.Is(err, ErrAlreadyRunning), errors.Is(err, ErrNoImage):
		return false, o.Snapshot(), nil
	default:
		return false, Snapshot{}, err
	}
}

func (s *service) Reset(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	o.Reset()
	return o.Snapshot(), nil
}

func (s *service) Subscribe(ctx context.Context, id uuid.UUID) (<-chan Snapshot, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.Subscribe(ctx), nil
}

func (s *service) KeepAlive(ctx context.Context, id uuid.UUID) error {
	return s.repo.Touch(ctx, id)
}

func (s *service) Image(ctx context.Context, id uuid.UUID) (*Image, error) {
	snap, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap.Image == nil {
		return nil, ErrNoImage
	}
	return snap.Image, nil
}

func (s *service) RenderResult(ctx context.Context, id uuid.UUID, format ResultFormat) ([]byte, error) {
	snap, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap.Phase != PhaseComplete || snap.Diagnosis == nil {
		return nil, ErrNoDiagnosis
	}
	switch format {
	case FormatMarkdown:
		return s.report.Markdown(*snap.Diagnosis)
	case FormatPDF:
		return s.report.PDF(*snap.Diagnosis)
	default:
		return nil, fmt.Errorf("unknown result format %q", format)
	}
}
