package analysis

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseIntaken   Phase = "intaken"
	PhaseAnalyzing Phase = "analyzing"
	PhaseComplete  Phase = "complete"
)

// MessageKind selects how a conversation entry is styled.
type MessageKind string

const (
	KindAdvisory MessageKind = "advisory"
	KindStatus   MessageKind = "status"
)

type Message struct {
	Text string      `json:"text"`
	Kind MessageKind `json:"kind"`
	At   time.Time   `json:"at"`
}

// Image is an uploaded leaf photo in displayable form.
type Image struct {
	Filename  string            `json:"filename,omitempty"`
	MediaType string            `json:"media_type"`
	Format    string            `json:"format"`
	Size      int               `json:"size"`
	Width     int               `json:"width,omitempty"`
	Height    int               `json:"height,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"` // EXIF tags
	Warnings  []string          `json:"warnings,omitempty"`

	// DataURL is the data: URL a page can drop into an <img> tag. It is large,
	// so it is served on its own endpoint instead of inside every snapshot.
	DataURL string `json:"-"`
	data    []byte
}

// Bytes returns the original upload.
func (i *Image) Bytes() []byte {
	return i.data
}

// Session is the aggregate root of one upload-analyze-result cycle.
type Session struct {
	ID uuid.UUID `json:"id"`

	Phase    Phase   `json:"phase"`
	Progress float64 `json:"progress"`

	Image     *Image                   `json:"image,omitempty"`
	Log       []Message                `json:"log"`
	Diagnosis *catalog.DiagnosisRecord `json:"diagnosis,omitempty"` // set only when complete

	// Generation is bumped on every intake, start and reset; scheduled steps
	// carrying an older value are discarded.
	Generation uint64 `json:"generation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is a deep copy of a session, safe to hand to renderers and subscribers.
type Snapshot = Session

func (s *Session) clone() Snapshot {
	out := *s
	out.Log = slices.Clone(s.Log)
	if out.Log == nil {
		out.Log = []Message{}
	}
	if s.Image != nil {
		img := *s.Image
		img.Metadata = maps.Clone(s.Image.Metadata)
		img.Warnings = slices.Clone(s.Image.Warnings)
		out.Image = &img
	}
	if s.Diagnosis != nil {
		d := s.Diagnosis.Clone()
		out.Diagnosis = &d
	}
	return out
}
