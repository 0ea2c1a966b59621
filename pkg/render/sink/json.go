package sink

import (
	"encoding/json"

	"github.com/matzehuels/staffline/pkg/render/layout"
)

// JSONOption configures RenderJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style       string
	document    string
	fingerprint string
	title       string
}

// WithJSONStyle records the style name for round-trip rendering.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONDocument records the document instance id and content fingerprint,
// so consumers can tell whether a cached layout is still current.
func WithJSONDocument(id, fingerprint string) JSONOption {
	return func(r *jsonRenderer) { r.document, r.fingerprint = id, fingerprint }
}

// WithJSONTitle records the score title.
func WithJSONTitle(t string) JSONOption { return func(r *jsonRenderer) { r.title = t } }

type jsonOutput struct {
	Document    string `json:"document,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Title       string `json:"title,omitempty"`
	Style       string `json:"style,omitempty"`
	*layout.Layout
}

// RenderJSON exports the full layout geometry as pretty-printed JSON. It
// does not modify l.
func RenderJSON(l *layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{
		Document:    r.document,
		Fingerprint: r.fingerprint,
		Title:       r.title,
		Style:       r.style,
		Layout:      l,
	}
	return json.MarshalIndent(out, "", "  ")
}
