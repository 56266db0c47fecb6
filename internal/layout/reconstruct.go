package layout

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoGeometry is returned by the geometry pipeline when the response has
// no recognizable line or field structure.
var ErrNoGeometry = errors.New("layout: no usable geometry")

// Result describes how a reconstruction was produced.
type Result struct {
	Document Document
	// Shape is the response structure used, Unrecognized on the text path.
	Shape Shape
	// Fallback is true when the flat-text segmenter produced the document.
	Fallback bool
	// Err is why the geometry path was abandoned, if it was.
	Err error
}

// Text renders the result as paragraph text.
func (r Result) Text() string {
	return r.Document.String()
}

// Reconstructor rebuilds paragraphs from provider responses.
type Reconstructor struct {
	cal Calibration
}

// New returns a Reconstructor using cal. Unset fields take defaults.
func New(cal Calibration) *Reconstructor {
	return &Reconstructor{cal: cal.normalized()}
}

// Calibration returns the effective constants.
func (r *Reconstructor) Calibration() Calibration {
	return r.cal
}

// Reconstruct runs the geometry pipeline on raw and falls back to the flat
// segmenter over fallback when raw is unusable or the pipeline fails.
func (r *Reconstructor) Reconstruct(raw any, fallback string) Result {
	shape, doc, err := r.fromGeometry(raw)
	if err == nil && !doc.Empty() {
		return Result{Document: doc, Shape: shape}
	}
	if err == nil {
		err = ErrNoGeometry
	}
	return Result{Document: SplitFlat(fallback), Fallback: true, Err: err}
}

// ReconstructJSON decodes data and reconstructs it. Undecodable input is
// treated like a response without geometry.
func (r *Reconstructor) ReconstructJSON(data []byte, fallback string) Result {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{Document: SplitFlat(fallback), Fallback: true, Err: fmt.Errorf("layout: decode response: %w", err)}
	}
	return r.Reconstruct(raw, fallback)
}

func (r *Reconstructor) fromGeometry(raw any) (shape Shape, doc Document, err error) {
	defer func() {
		if p := recover(); p != nil {
			shape, doc, err = Unrecognized, Document{}, fmt.Errorf("layout: geometry pipeline: %v", p)
		}
	}()
	shape, lines := Assemble(raw)
	if shape == Unrecognized {
		return Unrecognized, Document{}, ErrNoGeometry
	}
	return shape, Segment(lines, r.cal), nil
}

var defaultReconstructor = New(DefaultCalibration())

// Reconstruct rebuilds paragraph text with the default calibration.
func Reconstruct(raw any, fallback string) string {
	return defaultReconstructor.Reconstruct(raw, fallback).Text()
}

// ReconstructWith is Reconstruct with explicit calibration.
func ReconstructWith(cal Calibration, raw any, fallback string) string {
	return New(cal).Reconstruct(raw, fallback).Text()
}
