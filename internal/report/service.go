package report

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/signintech/gopdf"

	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

// ErrFontUnavailable is returned when none of the configured TTF fonts loads.
var ErrFontUnavailable = errors.New("no usable font for PDF report")

// DefaultFontPaths are tried in order when no font is configured.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
}

// Service renders the result card of a completed analysis.
type Service struct {
	fontPaths []string
	now       func() time.Time
}

// NewService returns a renderer that loads its PDF font from fontPaths,
// falling back to DefaultFontPaths when empty.
func NewService(fontPaths ...string) *Service {
	if len(fontPaths) == 0 {
		fontPaths = DefaultFontPaths
	}
	return &Service{fontPaths: fontPaths, now: time.Now}
}

// Card is the presentation view of a diagnosis.
type Card struct {
	Title      string
	Condition  string
	StatusIcon string
	StatusText string
	Confidence string
	Severity   string
	Days       string
	DaysLabel  string
	CareIcon   string
	CareText   string
	Treatments []string
}

// NewCard formats r the way the result card shows it.
func NewCard(r catalog.DiagnosisRecord) Card {
	c := Card{
		Title:      "Detection Results",
		Condition:  r.Name,
		Confidence: strconv.Itoa(r.Confidence) + "%",
		Severity:   r.Severity(),
		Days:       r.TreatmentDays(),
		Treatments: r.Treatments,
	}
	if r.IsHealthy() {
		c.StatusIcon, c.StatusText = "✓", "Plant is healthy!"
		c.DaysLabel = "No Action Needed"
		c.CareIcon, c.CareText = "✅", "Recommended Care"
	} else {
		c.StatusIcon, c.StatusText = "⚠", "Disease detected"
		c.DaysLabel = "Days to Treat"
		c.CareIcon, c.CareText = "⚠️", "Treatment Required"
	}
	return c
}

func (c Card) StatusLine() string { return c.StatusIcon + " " + c.StatusText }

func (c Card) CareTitle() string { return c.CareIcon + " " + c.CareText }

// Markdown renders the card as GitHub-flavored Markdown.
func (s *Service) Markdown(r catalog.DiagnosisRecord) ([]byte, error) {
	card := NewCard(r)

	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)
	md.H1(card.Title)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Condition", card.Condition},
			{"Status", card.StatusLine()},
			{"Confidence", card.Confidence},
			{"Severity Level", card.Severity},
			{card.DaysLabel, card.Days},
		},
	})
	md.PlainText("")
	md.H2(card.CareTitle())
	md.PlainText("")
	md.OrderedList(card.Treatments...)
	md.PlainText("")
	md.PlainTextf("_Generated %s. Results are simulated and not a substitute for expert advice._",
		s.now().Format("2006-01-02 15:04"))

	if err := md.Build(); err != nil {
		return nil, fmt.Errorf("failed to build markdown report: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders the card on a single A4 page. Icons are left out since common
// TTF fonts have no emoji glyphs.
func (s *Service) PDF(r catalog.DiagnosisRecord) ([]byte, error) {
	card := NewCard(r)

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := s.loadFont(&pdf); err != nil {
		return nil, err
	}

	lines := []struct {
		size int
		text string
		gap  float64
	}{
		{20, card.Title, 30},
		{16, card.Condition, 20},
		{12, card.StatusText, 15},
		{12, "Confidence: " + card.Confidence, 15},
		{12, "Severity Level: " + card.Severity, 15},
		{12, card.DaysLabel + ": " + card.Days, 25},
		{14, card.CareText, 20},
	}
	for _, l := range lines {
		if err := pdf.SetFont("Body", "", l.size); err != nil {
			return nil, err
		}
		if err := pdf.Cell(nil, l.text); err != nil {
			return nil, err
		}
		pdf.Br(l.gap)
	}

	if err := pdf.SetFont("Body", "", 11); err != nil {
		return nil, err
	}
	for i, t := range card.Treatments {
		wrapped, err := pdf.SplitText(fmt.Sprintf("%d. %s", i+1, t), 500)
		if err != nil {
			return nil, err
		}
		for _, w := range wrapped {
			if err := pdf.Cell(nil, w); err != nil {
				return nil, err
			}
			pdf.Br(14)
		}
	}

	pdf.SetY(780)
	if err := pdf.SetFont("Body", "", 9); err != nil {
		return nil, err
	}
	if err := pdf.Cell(nil, "Generated "+s.now().Format("02.01.2006 15:04")+" - simulated result"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("Body", path); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		return ErrFontUnavailable
	}
	return fmt.Errorf("%w: %v", ErrFontUnavailable, lastErr)
}
