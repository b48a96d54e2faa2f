package analysis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satyanarayana32518/plant-disease-detection/internal/agent"
	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

type stubReport struct {
	mu   sync.Mutex
	seen []catalog.DiagnosisRecord
}

func (s *stubReport) Markdown(r catalog.DiagnosisRecord) ([]byte, error) {
	s.record(r)
	return []byte("# " + r.Name), nil
}

func (s *stubReport) PDF(r catalog.DiagnosisRecord) ([]byte, error) {
	s.record(r)
	return []byte("%PDF-1.4 " + r.Name), nil
}

func (s *stubReport) record(r catalog.DiagnosisRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, r)
}

func newTestService(t *testing.T, indices ...int) (Service, *manualScheduler, *stubReport) {
	t.Helper()
	sched := &manualScheduler{}
	rep := &stubReport{}
	cat := catalog.Default()
	svc := NewService(NewRepository(8, time.Hour), cat,
		agent.NewSimulatedDetector(cat, agent.NewSequence(indices...)), rep,
		WithScheduler(sched),
		WithLogger(discardLogger()),
	)
	return svc, sched, rep
}

func TestServiceUnknownSession(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.GetSession(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = svc.SelectImage(ctx, id, pngUpload(t))
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = svc.StartAnalysis(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Reset(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Subscribe(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.RenderResult(ctx, id, FormatMarkdown)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, svc.DeleteSession(ctx, id), ErrSessionNotFound)
}

func TestServiceWorkflow(t *testing.T) {
	t.Parallel()

	svc, sched, rep := newTestService(t, 2, 4)
	ctx := context.Background()

	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	id := snap.ID
	assert.Equal(t, PhaseIdle, snap.Phase)

	_, err = svc.Image(ctx, id)
	require.ErrorIs(t, err, ErrNoImage)

	started, snap, err := svc.StartAnalysis(ctx, id)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, PhaseIdle, snap.Phase)

	msg, snap, err := svc.SelectImage(ctx, id, pngUpload(t))
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "Possible condition: Leaf Rust")
	assert.Equal(t, PhaseIntaken, snap.Phase)

	img, err := svc.Image(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MediaType)

	_, err = svc.RenderResult(ctx, id, FormatMarkdown)
	require.ErrorIs(t, err, ErrNoDiagnosis)

	started, snap, err = svc.StartAnalysis(ctx, id)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, PhaseAnalyzing, snap.Phase)

	started, _, err = svc.StartAnalysis(ctx, id)
	require.NoError(t, err)
	assert.False(t, started)

	runScript(sched)

	md, err := svc.RenderResult(ctx, id, FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# Early Blight", string(md))
	pdf, err := svc.RenderResult(ctx, id, FormatPDF)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), "Early Blight")
	_, err = svc.RenderResult(ctx, id, ResultFormat("docx"))
	require.Error(t, err)
	assert.Len(t, rep.seen, 2)

	snap, err = svc.Reset(ctx, id)
	require.NoError(t, err)
	assertIdle(t, snap)

	require.NoError(t, svc.DeleteSession(ctx, id))
	_, err = svc.GetSession(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestServiceCatalog(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	assert.Equal(t, 6, svc.Catalog().Len())

	r, err := svc.Condition("POWDERY mildew")
	require.NoError(t, err)
	assert.Equal(t, "Powdery Mildew", r.Name)

	_, err = svc.Condition("Black Spot")
	require.ErrorIs(t, err, catalog.ErrUnknownCondition)
}
