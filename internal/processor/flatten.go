package processor

import (
	"strings"

	vision "google.golang.org/api/vision/v1"
)

// FlattenBlocks walks block -> paragraph -> word -> symbol and emits one
// WordBlock per word, in provider traversal order.
//
// A word without symbols is still emitted, with empty text and confidence 0,
// so len(result) always equals the number of words in the tree.
func FlattenBlocks(blocks []*vision.Block) []WordBlock {
	out := make([]WordBlock, 0)
	for _, block := range blocks {
		if block == nil {
			continue
		}
		for _, paragraph := range block.Paragraphs {
			if paragraph == nil {
				continue
			}
			for _, word := range paragraph.Words {
				if word == nil {
					continue
				}
				out = append(out, convertWord(word))
			}
		}
	}
	return out
}

func convertWord(word *vision.Word) WordBlock {
	var text strings.Builder
	var confidenceSum float64
	symbolCount := 0
	for _, symbol := range word.Symbols {
		if symbol == nil {
			continue
		}
		text.WriteString(symbol.Text)
		confidenceSum += symbol.Confidence
		symbolCount++
	}

	confidence := 0.0
	if symbolCount > 0 {
		confidence = confidenceSum / float64(symbolCount)
	}

	var vertices []*vision.Vertex
	if word.BoundingBox != nil {
		vertices = word.BoundingBox.Vertices
	}

	return WordBlock{
		Text:        text.String(),
		BoundingBox: boundingBoxFromVertices(vertices),
		Confidence:  confidence,
	}
}

// boundingBoxFromVertices computes the centroid and the min/max extent.
// Missing vertices count as (0,0), matching the provider's omission of zero fields.
func boundingBoxFromVertices(in []*vision.Vertex) BoundingBox {
	if len(in) == 0 {
		return BoundingBox{Vertices: []Vertex{}}
	}

	vertices := make([]Vertex, len(in))
	for i, v := range in {
		if v != nil {
			vertices[i] = Vertex{X: int(v.X), Y: int(v.Y)}
		}
	}

	minX, maxX := vertices[0].X, vertices[0].X
	minY, maxY := vertices[0].Y, vertices[0].Y
	var sumX, sumY int
	for _, v := range vertices {
		sumX += v.X
		sumY += v.Y
		minX = min(minX, v.X)
		maxX = max(maxX, v.X)
		minY = min(minY, v.Y)
		maxY = max(maxY, v.Y)
	}

	n := float64(len(vertices))
	return BoundingBox{
		X:        float64(sumX) / n,
		Y:        float64(sumY) / n,
		Width:    maxX - minX,
		Height:   maxY - minY,
		Vertices: vertices,
	}
}
