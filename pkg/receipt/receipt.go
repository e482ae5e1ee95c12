// Package receipt extracts the total amount from photographed receipts so an
// expense draft can be prefilled instead of typed by hand.
package receipt

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// ErrNoAmount is returned when OCR ran but no money-looking value survived
// the plausibility filters.
var ErrNoAmount = errors.New("no amount found in receipt")

// Draft is the prefill produced from a scanned receipt.
type Draft struct {
	// Amount is the extracted total in currency units.
	Amount float64
	// Raw is the matched substring the amount was parsed from.
	Raw string
	// Confidence is a rough 0..1 proxy based on contextual hints, not a
	// calibrated probability.
	Confidence float64
}

// Scanner runs preprocessing passes and Tesseract over receipt images.
type Scanner struct {
	language string
	logger   *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLanguage sets the Tesseract language model (default "eng").
func WithLanguage(lang string) ScannerOption {
	return func(s *Scanner) { s.language = lang }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = logger }
}

// NewScanner creates a receipt scanner.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		language: "eng",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanFile OCRs the image at path and extracts the most plausible total.
// A grayscale pass runs first; if it yields nothing, a sharpened binarized
// pass retries before giving up with ErrNoAmount.
func (s *Scanner) ScanFile(path string) (*Draft, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	gray := normalize(img)

	var cands []candidate
	text, err := s.recognize(gray, path, "gray")
	if err != nil {
		return nil, err
	}
	cands = append(cands, findCandidates(text)...)

	if len(cands) == 0 {
		hard, err := s.recognize(binarize(sharpen(gray), 160), path, "binary")
		if err != nil {
			return nil, err
		}
		cands = findCandidates(hard)
	}

	amount, raw, ok := bestAmount(cands)
	if !ok {
		s.logger.Debug("receipt scan found no amount", "path", path, "candidates", len(cands))
		return nil, ErrNoAmount
	}

	draft := &Draft{Amount: amount, Raw: raw, Confidence: confidence(raw, cands)}
	s.logger.Debug("receipt scan",
		"path", path,
		"amount", draft.Amount,
		"raw", draft.Raw,
		"confidence", draft.Confidence)
	return draft, nil
}

// recognize writes the preprocessed image to a temp file and runs Tesseract
// over it. gosseract only accepts file paths, not in-memory images.
func (s *Scanner) recognize(img *image.NRGBA, origin, pass string) (string, error) {
	tmp, err := os.CreateTemp("", "receipt-*.png")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := imaging.Save(img, tmpPath); err != nil {
		return "", fmt.Errorf("save preprocessed image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(s.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImage(tmpPath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr %s pass on %s: %w", pass, filepath.Base(origin), err)
	}
	return text, nil
}

// confidence estimates trust in the chosen match: currency or total context
// reads high, a bare digit run among many candidates reads low.
func confidence(raw string, cands []candidate) float64 {
	conf := 0.3
	for _, c := range cands {
		if c.raw != raw {
			continue
		}
		if sc := scoreCandidate(c); sc >= 10 {
			conf = 0.9
		} else if sc >= 5 {
			conf = 0.7
		}
		break
	}
	if len(cands) > 8 && conf < 0.9 {
		conf -= 0.1
	}
	return conf
}
