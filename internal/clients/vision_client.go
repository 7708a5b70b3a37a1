/**
 * Google Cloud Vision Client - document text detection
 *
 * Sends one base64 image per call to images:annotate with the
 * DOCUMENT_TEXT_DETECTION feature and Korean-first language hints.
 * The API key travels as the `key` query parameter.
 */

package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	apperrors "github.com/adverant/nexus/prescription-ocr/internal/errors"
	"github.com/adverant/nexus/prescription-ocr/internal/logging"
)

const (
	FeatureDocumentTextDetection = "DOCUMENT_TEXT_DETECTION"
	DefaultVisionEndpoint        = "https://vision.googleapis.com/"
)

// LanguageHints in priority order: Korean first, English second
var LanguageHints = []string{"ko", "en"}

// VisionClient handles communication with the Google Cloud Vision API
type VisionClient struct {
	service *vision.Service
	logger  *logging.Logger
}

// VisionConfig holds vision client configuration
type VisionConfig struct {
	APIKey   string
	Endpoint string // defaults to DefaultVisionEndpoint
	Logger   *logging.Logger
}

// Detection is the raw outcome of one detection call
type Detection struct {
	Text   string
	Blocks []*vision.Block // blocks of the first page only
}

// NewVisionClient creates a new vision client. The API key is fixed for the client's lifetime.
func NewVisionClient(ctx context.Context, cfg *VisionConfig) (*VisionClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultVisionEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		// Without a key the library would fall back to ADC; send the call unauthenticated and let the provider reject it.
		opts = append(opts, option.WithoutAuthentication())
	}

	service, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision service: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("VisionClient")
	}

	return &VisionClient{
		service: service,
		logger:  logger,
	}, nil
}

// DetectDocumentText runs document text detection on a base64 image.
//
// A response without fullTextAnnotation is not an error: it yields empty
// text and no blocks. Non-2xx statuses and per-image error statuses
// return a DETECTION_FAILED ProcessingError.
func (c *VisionClient) DetectDocumentText(ctx context.Context, content string) (*Detection, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image: &vision.Image{Content: content},
				Features: []*vision.Feature{
					{Type: FeatureDocumentTextDetection, MaxResults: 1},
				},
				ImageContext: &vision.ImageContext{
					LanguageHints: LanguageHints,
				},
			},
		},
	}

	c.logger.Info("Requesting document text detection", "imageSize", len(content))

	resp, err := c.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			c.logger.Error("Vision API returned error status", "status", gerr.Code, "message", gerr.Message)
			return nil, apperrors.NewDetectionFailedError("", gerr.Code, err)
		}
		c.logger.Error("Vision API request failed", "error", err)
		return nil, apperrors.NewDetectionFailedError("", 0, err)
	}

	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		c.logger.Warn("Vision API response has no entries")
		return &Detection{}, nil
	}

	first := resp.Responses[0]
	if first.Error != nil && first.Error.Code != 0 {
		c.logger.Error("Vision API rejected image", "code", first.Error.Code, "message", first.Error.Message)
		return nil, apperrors.NewDetectionFailedError("", 0, fmt.Errorf("image error %d: %s", first.Error.Code, first.Error.Message))
	}

	annotation := first.FullTextAnnotation
	if annotation == nil {
		c.logger.Info("No text detected")
		return &Detection{}, nil
	}

	detection := &Detection{Text: annotation.Text}
	if len(annotation.Pages) > 0 && annotation.Pages[0] != nil {
		detection.Blocks = annotation.Pages[0].Blocks
	}

	c.logger.Info("Document text detected", "textLength", len(detection.Text), "blocks", len(detection.Blocks))
	return detection, nil
}
