// Package snapshot writes the self-contained result documents of a canvass
// run: one JSON document per category plus a shared metadata document, and
// an XLSX rendering of the leaderboards for hand-off.
package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/zurihub/places-cli/internal/geo"
	"github.com/zurihub/places-cli/internal/model"
)

// Metadata describes one canvass. The shared metadata document leaves
// Category and TotalResults empty.
type Metadata struct {
	Generated    time.Time  `json:"generated"`
	MinReviews   int        `json:"minReviews"`
	Region       string     `json:"region"`
	Bounds       geo.Bounds `json:"bounds"`
	Category     string     `json:"category,omitempty"`
	TotalResults int        `json:"totalResults,omitempty"`
}

// Document is the per-category snapshot. Places are sorted descending by
// (rating, reviewCount); rankings hold place ids only.
type Document struct {
	Metadata Metadata                     `json:"metadata"`
	Rankings map[string]model.Leaderboard `json:"rankings"`
	Places   []model.Place                `json:"places"`
}

// Writer persists snapshot documents into a data directory.
type Writer struct {
	dir string
}

// NewWriter creates the data directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, eris.New("snapshot: data dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "snapshot: create data dir %s", dir)
	}
	return &Writer{dir: dir}, nil
}

// WriteCategory writes <category>.json. The write is atomic: the document
// lands under a temporary name first and is renamed into place, so a
// crashed run never leaves a partial category document behind.
func (w *Writer) WriteCategory(doc Document) (string, error) {
	if doc.Metadata.Category == "" {
		return "", eris.New("snapshot: document has no category")
	}
	path := filepath.Join(w.dir, doc.Metadata.Category+".json")
	if err := w.writeAtomic(path, doc); err != nil {
		return "", err
	}
	zap.L().Info("snapshot written",
		zap.String("path", path),
		zap.Int("places", len(doc.Places)),
		zap.Int("trades", len(doc.Rankings)),
	)
	return path, nil
}

// WriteMetadata writes the shared metadata.json, once per run.
func (w *Writer) WriteMetadata(meta Metadata) (string, error) {
	path := filepath.Join(w.dir, "metadata.json")
	if err := w.writeAtomic(path, meta); err != nil {
		return "", err
	}
	return path, nil
}

// ReadCategory loads a previously written category document.
func (w *Writer) ReadCategory(category string) (*Document, error) {
	path := filepath.Join(w.dir, category+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "snapshot: read %s", path)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "snapshot: parse %s", path)
	}
	return &doc, nil
}

// Dir returns the data directory.
func (w *Writer) Dir() string {
	return w.dir
}

func (w *Writer) writeAtomic(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrapf(err, "snapshot: encode %s", path)
	}

	tmp, err := os.CreateTemp(w.dir, filepath.Base(path)+".tmp")
	if err != nil {
		return eris.Wrap(err, "snapshot: create temp file")
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "snapshot: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "snapshot: close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "snapshot: rename into %s", path)
	}
	return nil
}
