package dataset

import "github.com/sirupsen/logrus"

// Stats describes one ingestion: how many rows were seen and why some did not
// become items.
type Stats struct {
	Source         string `json:"source"`
	Format         string `json:"format"`
	Column         string `json:"column,omitempty"`
	Rows           int    `json:"rows"`
	Loaded         int    `json:"loaded"`
	SkippedBlank   int    `json:"skipped_blank"`
	SkippedInvalid int    `json:"skipped_invalid"`
}

func (s Stats) log(log *logrus.Entry) {
	entry := log.WithFields(logrus.Fields{
		"format":  s.Format,
		"rows":    s.Rows,
		"loaded":  s.Loaded,
		"blank":   s.SkippedBlank,
		"invalid": s.SkippedInvalid,
	})
	if s.Column != "" {
		entry = entry.WithField("column", s.Column)
	}
	if s.Loaded == 0 {
		entry.Warn("dataset produced no feedback items")
		return
	}
	entry.Info("dataset loaded")
}
