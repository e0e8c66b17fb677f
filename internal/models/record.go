// Package models defines the domain types for raido.
package models

import "time"

// ConversionRecord describes one converted note.
type ConversionRecord struct {
	Basename    string    `json:"basename"`
	SourcePath  string    `json:"source_path"`
	OrgPath     string    `json:"org_path"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Checksum    string    `json:"checksum"`
	ConvertedAt time.Time `json:"converted_at"`
}

// Asset kinds.
const (
	AssetImage = "image"
	AssetPDF   = "pdf"
	AssetOther = "other"
)

// AssetRecord describes one non-note file copied during a run.
type AssetRecord struct {
	SourcePath string `json:"source_path"`
	DestPath   string `json:"dest_path"`
	Kind       string `json:"kind"`
}

// Summary aggregates the outcome of a directory run.
type Summary struct {
	Notes         int `json:"notes"`
	Assets        int `json:"assets"`
	LinksResolved int `json:"links_resolved"`
}
