package processor

import (
	"encoding/base64"
	"fmt"
	"io"
)

// EncodeImage reads the whole image and returns it as standard base64 without a data-URL prefix.
// Images over maxSize bytes are rejected; maxSize <= 0 disables the limit.
func EncodeImage(r io.Reader, maxSize int64) (string, error) {
	if r == nil {
		return "", fmt.Errorf("image reader is nil")
	}

	src := r
	if maxSize > 0 {
		src = io.LimitReader(r, maxSize+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	if len(data) == 0 {
		return "", fmt.Errorf("image is empty")
	}

	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", fmt.Errorf("image exceeds %d bytes", maxSize)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}
