/**
 * Prescription Analyzer
 *
 * Runs one prescription image through two sequential stages:
 * - Vision: base64 encode, document text detection, word block flattening
 * - Relay: forward the recognized text to the backend parser
 *
 * The analyzer holds only immutable configuration, so one instance is
 * shared by all concurrent callers.
 */

package processor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/adverant/nexus/prescription-ocr/internal/clients"
	apperrors "github.com/adverant/nexus/prescription-ocr/internal/errors"
	"github.com/adverant/nexus/prescription-ocr/internal/logging"
	"github.com/adverant/nexus/prescription-ocr/internal/medication"
)

// FailureMessage is shown to the user for every vision stage failure
const FailureMessage = "처방전을 인식할 수 없습니다. 이미지가 선명한지 확인해주세요."

// TextDetector runs document text detection on a base64 image
type TextDetector interface {
	DetectDocumentText(ctx context.Context, content string) (*clients.Detection, error)
}

// TextRelay forwards recognized text to the parsing backend
type TextRelay interface {
	Relay(ctx context.Context, text string) (*clients.RelayResult, error)
}

// AnalyzerConfig holds analyzer configuration
type AnalyzerConfig struct {
	Detector     TextDetector
	Relay        TextRelay
	MaxImageSize int64
	Logger       *logging.Logger
}

// AnalysisResult is the outcome of Analyze: medications on success, a fixed message otherwise
type AnalysisResult struct {
	Success     bool                    `json:"success"`
	Medications []medication.Medication `json:"medications,omitempty"`
	Message     string                  `json:"message,omitempty"`
	Reason      apperrors.ErrorCode     `json:"reason,omitempty"`
}

// PrescriptionAnalyzer turns prescription images into medications
type PrescriptionAnalyzer struct {
	detector     TextDetector
	relay        TextRelay
	maxImageSize int64
	logger       *logging.Logger
}

// NewPrescriptionAnalyzer creates a new analyzer
func NewPrescriptionAnalyzer(cfg *AnalyzerConfig) (*PrescriptionAnalyzer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.Detector == nil {
		return nil, fmt.Errorf("text detector is required")
	}

	if cfg.Relay == nil {
		return nil, fmt.Errorf("text relay is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("Analyzer")
	}

	return &PrescriptionAnalyzer{
		detector:     cfg.Detector,
		relay:        cfg.Relay,
		maxImageSize: cfg.MaxImageSize,
		logger:       logger,
	}, nil
}

// Analyze recognizes the image and relays its text.
//
// Vision stage failures return an unsuccessful result with FailureMessage.
// When the relay produces nothing (disabled, timed out or failed) the
// result is nil. Analyze never returns an error and never panics.
func (a *PrescriptionAnalyzer) Analyze(ctx context.Context, image io.Reader) (result *AnalysisResult) {
	requestID := uuid.New().String()
	log := a.logger.With(requestID[:8])

	defer func() {
		if r := recover(); r != nil {
			log.Error("Prescription analysis panicked", "panic", r)
			result = &AnalysisResult{
				Success: false,
				Message: FailureMessage,
				Reason:  apperrors.ErrorDetectionFailed,
			}
		}
	}()

	log.Info("Starting prescription analysis")

	recognition, err := a.recognize(ctx, requestID, image, log)
	if err != nil {
		log.Error("Prescription analysis failed", "error", err)
		return &AnalysisResult{
			Success: false,
			Message: FailureMessage,
			Reason:  apperrors.CodeOf(err),
		}
	}

	relayed, err := a.relay.Relay(ctx, recognition.Text)
	if err != nil {
		tagRequest(err, requestID)
		log.Warn("Backend relay produced no result", "code", apperrors.CodeOf(err), "error", err)
		return nil
	}
	if relayed == nil {
		log.Info("Backend relay skipped")
		return nil
	}

	log.Info("Prescription analysis completed", "medications", len(relayed.Medications))
	return &AnalysisResult{
		Success:     true,
		Medications: relayed.Medications,
	}
}

// Recognize runs the vision stage only and returns the text with its word blocks.
// Errors are *errors.ProcessingError values.
func (a *PrescriptionAnalyzer) Recognize(ctx context.Context, image io.Reader) (*Recognition, error) {
	requestID := uuid.New().String()
	return a.recognize(ctx, requestID, image, a.logger.With(requestID[:8]))
}

func (a *PrescriptionAnalyzer) recognize(ctx context.Context, requestID string, image io.Reader, log *logging.Logger) (*Recognition, error) {
	startTime := time.Now()

	content, err := EncodeImage(image, a.maxImageSize)
	if err != nil {
		return nil, apperrors.NewImageEncodingError(requestID, err)
	}
	log.Debug("Image encoded", "base64Length", len(content))

	detection, err := a.detector.DetectDocumentText(ctx, content)
	if err != nil {
		if apperrors.CodeOf(err) == "" {
			return nil, apperrors.NewDetectionFailedError(requestID, 0, err)
		}
		tagRequest(err, requestID)
		return nil, err
	}
	if detection == nil {
		detection = &clients.Detection{}
	}

	blocks := FlattenBlocks(detection.Blocks)
	log.Info("Text recognized", "textLength", len(detection.Text), "wordBlocks", len(blocks))

	return &Recognition{
		RequestID: requestID,
		Text:      detection.Text,
		Blocks:    blocks,
		Duration:  time.Since(startTime),
	}, nil
}

// tagRequest stamps the request id on a ProcessingError raised by a client
func tagRequest(err error, requestID string) {
	if pe, ok := err.(*apperrors.ProcessingError); ok && pe.RequestID == "" {
		pe.RequestID = requestID
	}
}
