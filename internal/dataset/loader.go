package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/types"
)

// TextMode controls how plain-text files are split into items.
type TextMode string

const (
	TextModeLines TextMode = "lines"
	TextModeWhole TextMode = "whole"
)

func (m TextMode) Valid() bool { return m == TextModeLines || m == TextModeWhole || m == "" }

type Options struct {
	TextMode TextMode
}

var (
	ErrUnsupportedFormat = errors.New("unsupported feedback file format")
	ErrNoFeedbackColumn  = errors.New("no feedback column found")
)

// feedbackColumns are matched case-insensitively against header cells, in
// priority order.
var feedbackColumns = []string{"feedback", "text", "review", "body"}

// Load reads feedback items from a .csv, .json, .txt or .xlsx file.
func Load(path string, opts Options) ([]types.FeedbackItem, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return LoadReader(f, filepath.Base(path), opts)
}

// LoadReader is Load for an already-open stream; name supplies the format
// through its extension.
func LoadReader(r io.Reader, name string, opts Options) ([]types.FeedbackItem, Stats, error) {
	log := logger.New().WithField("component", "dataset").WithField("file", name)

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	var (
		texts []entry
		st    Stats
		err   error
	)
	switch format {
	case "csv":
		texts, st, err = readCSV(r)
	case "json":
		texts, st, err = readJSON(r)
	case "txt":
		texts, st, err = readText(r, opts.TextMode)
	case "xlsx":
		texts, st, err = readXLSX(r)
	default:
		return nil, Stats{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	if err != nil {
		log.WithError(err).Error("load failed")
		return nil, Stats{}, err
	}
	st.Source = name
	st.Format = format

	items := build(texts, name, &st)
	st.log(log)
	return items, st, nil
}

// FromTexts wraps raw strings, skipping blanks, as a batch.
func FromTexts(texts []string, source string) ([]types.FeedbackItem, Stats) {
	st := Stats{Source: source, Format: "inline", Rows: len(texts)}
	entries := make([]entry, len(texts))
	for i, t := range texts {
		entries[i] = entry{text: t}
	}
	return build(entries, source, &st), st
}

// Limit keeps the first n items; n <= 0 keeps everything.
func Limit(items []types.FeedbackItem, n int) []types.FeedbackItem {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

type entry struct {
	text      string
	source    string
	timestamp *time.Time
}

func build(entries []entry, fallbackSource string, st *Stats) []types.FeedbackItem {
	items := make([]types.FeedbackItem, 0, len(entries))
	for _, e := range entries {
		text := strings.TrimSpace(e.text)
		if text == "" {
			st.SkippedBlank++
			continue
		}
		src := e.source
		if src == "" {
			src = fallbackSource
		}
		items = append(items, types.FeedbackItem{
			Index:     len(items) + 1,
			Text:      text,
			Source:    src,
			Timestamp: e.timestamp,
		})
	}
	st.Loaded = len(items)
	return items
}

// feedbackColumn picks the text column from a header row.
func feedbackColumn(header []string) (int, error) {
	for _, want := range feedbackColumns {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i, nil
			}
		}
	}
	if len(header) == 1 {
		return 0, nil
	}
	return -1, fmt.Errorf("%w in header %q", ErrNoFeedbackColumn, header)
}

func fromRows(rows [][]string) ([]entry, Stats, error) {
	if len(rows) == 0 {
		return nil, Stats{}, nil
	}
	col, err := feedbackColumn(rows[0])
	if err != nil {
		return nil, Stats{}, err
	}
	st := Stats{Column: strings.TrimSpace(rows[0][col]), Rows: len(rows) - 1}
	out := make([]entry, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if col < len(r) {
			out = append(out, entry{text: r[col]})
		} else {
			out = append(out, entry{})
		}
	}
	return out, st, nil
}

func readCSV(r io.Reader) ([]entry, Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return fromRows(rows)
}

func readText(r io.Reader, mode TextMode) ([]entry, Stats, error) {
	if mode == TextModeWhole {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("read text: %w", err)
		}
		return []entry{{text: string(b)}}, Stats{Rows: 1}, nil
	}
	var out []entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		out = append(out, entry{text: sc.Text()})
	}
	if err := sc.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("read text: %w", err)
	}
	return out, Stats{Rows: len(out)}, nil
}

// readJSON accepts an array whose elements are strings or objects carrying a
// feedback key. Anything else in the array is counted as invalid.
func readJSON(r io.Reader) ([]entry, Stats, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read json: %w", err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(b), &raw); err != nil {
		return nil, Stats{}, fmt.Errorf("decode json: expected an array: %w", err)
	}
	st := Stats{Rows: len(raw)}
	out := make([]entry, 0, len(raw))
	for _, el := range raw {
		var s string
		if err := json.Unmarshal(el, &s); err == nil {
			out = append(out, entry{text: s})
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(el, &obj); err != nil {
			st.SkippedInvalid++
			continue
		}
		e, ok := objectEntry(obj)
		if !ok {
			st.SkippedInvalid++
			continue
		}
		out = append(out, e)
	}
	return out, st, nil
}

func objectEntry(obj map[string]any) (entry, bool) {
	lower := make(map[string]any, len(obj))
	for k, v := range obj {
		lower[strings.ToLower(k)] = v
	}
	var e entry
	found := false
	for _, k := range feedbackColumns {
		if s, ok := lower[k].(string); ok {
			e.text, found = s, true
			break
		}
	}
	if !found {
		return entry{}, false
	}
	if s, ok := lower["source"].(string); ok {
		e.source = s
	} else if id, ok := lower["id"]; ok && id != nil {
		e.source = fmt.Sprint(id)
	}
	if s, ok := lower["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			e.timestamp = &ts
		}
	}
	return e, true
}
