/**
 * OCR Types - word-level recognition output
 *
 * Produced once per provider response by FlattenBlocks and handed to the
 * caller of Recognize. The analyzer itself only forwards the raw text.
 */

package processor

import (
	"time"
)

// Recognition is the output of one document text detection call
type Recognition struct {
	RequestID string        `json:"requestId"`
	Text      string        `json:"text"`
	Blocks    []WordBlock   `json:"blocks"`
	Duration  time.Duration `json:"-"`
}

// WordBlock is one recognized word with position, size and confidence
type WordBlock struct {
	Text        string      `json:"text"`
	BoundingBox BoundingBox `json:"boundingBox"`
	Confidence  float64     `json:"confidence"` // mean symbol confidence, 0..1
}

// BoundingBox is the word quadrilateral plus its centroid and axis-aligned extent.
// X and Y are the centroid, not the top-left corner.
type BoundingBox struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Vertices []Vertex `json:"vertices"`
}

// Vertex is a pixel coordinate as reported by the provider
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}
