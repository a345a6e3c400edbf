package app

import (
	"encoding/json"
	"image/color"
	"os"
	"time"

	"chart-annotator/internal/coords"
	"chart-annotator/internal/drawing"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/geometry"
)

// AnnotationFile is the on-disk annotation format (.chann). Drawings are
// stored by their data points only; pixel positions are recomputed at
// load time from the current projection.
type AnnotationFile struct {
	Version  int            `json:"version"`
	Symbol   string         `json:"symbol,omitempty"`
	Created  time.Time      `json:"created"`
	Modified time.Time      `json:"modified"`
	Drawings []SavedDrawing `json:"drawings"`
}

// SavedDrawing is one serialized annotation.
type SavedDrawing struct {
	ID         string             `json:"id"`
	Type       drawing.ToolType   `json:"type"`
	DataPoints []series.DataPoint `json:"data_points"`
	Color      color.RGBA         `json:"color"`
	LineWidth  float64            `json:"line_width"`
	Visible    bool               `json:"visible"`
	Locked     bool               `json:"locked"`
	Config     drawing.Config     `json:"config"`
}

// NewAnnotationFile creates an empty annotation file for a symbol.
func NewAnnotationFile(symbol string) *AnnotationFile {
	now := time.Now()
	return &AnnotationFile{Version: 1, Symbol: symbol, Created: now, Modified: now}
}

// LoadAnnotations reads an annotation file from disk.
func LoadAnnotations(path string) (*AnnotationFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file AnnotationFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Save writes the annotation file to disk.
func (f *AnnotationFile) Save(path string) error {
	f.Modified = time.Now()
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SetDrawings replaces the file's drawing list from the live list.
func (f *AnnotationFile) SetDrawings(list []*drawing.Drawing) {
	f.Drawings = make([]SavedDrawing, 0, len(list))
	for _, d := range list {
		f.Drawings = append(f.Drawings, SavedDrawing{
			ID:         d.ID,
			Type:       d.Type,
			DataPoints: append([]series.DataPoint(nil), d.DataPoints...),
			Color:      d.Color,
			LineWidth:  d.LineWidth,
			Visible:    d.Visible,
			Locked:     d.Locked,
			Config:     d.Config,
		})
	}
}

// Restore rebuilds live drawings from the file, projecting pixel points
// through the given coordinate system. Entries with an unknown type are
// skipped.
func (f *AnnotationFile) Restore(cs *coords.System) []*drawing.Drawing {
	out := make([]*drawing.Drawing, 0, len(f.Drawings))
	for _, saved := range f.Drawings {
		if !saved.Type.Valid() {
			continue
		}
		d := &drawing.Drawing{
			ID:         saved.ID,
			Type:       saved.Type,
			DataPoints: append([]series.DataPoint(nil), saved.DataPoints...),
			Points:     make([]geometry.Point2D, len(saved.DataPoints)),
			Color:      saved.Color,
			LineWidth:  saved.LineWidth,
			Visible:    saved.Visible,
			Locked:     saved.Locked,
			Config:     saved.Config,
		}
		d.Reproject(cs)
		out = append(out, d)
	}
	return out
}
