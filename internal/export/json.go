package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/processor"
)

// FileName is the JSON export name for a batch.
func FileName(batchID string) string {
	return fmt.Sprintf("analysis_results_%s.json", batchID)
}

// Encode writes the batch document: batch_id, generated_at, records, then
// the summary as the trailing member.
func Encode(w io.Writer, b processor.Batch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode batch %s: %w", b.ID, err)
	}
	return nil
}

// WriteJSON writes the batch document into dir and returns its path.
func WriteJSON(dir string, b processor.Batch) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName(b.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, b); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	logger.New().WithBatch(b.ID, len(b.Records)).WithField("path", path).Info("json export written")
	return path, nil
}
