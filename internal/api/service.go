package api

import (
	"github.com/starford/raido/internal/manifest"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Service coordinates manifest and output-tree reads for the API layer.
type Service struct {
	man   *manifest.DB
	store *storage.FS
}

// NewService creates a new API service over a manifest and the output tree.
func NewService(man *manifest.DB, store *storage.FS) *Service {
	return &Service{man: man, store: store}
}

// NoteDetail is the response payload for a single converted note.
type NoteDetail struct {
	models.ConversionRecord
	Content string `json:"content"`
}

// ListNotes returns every recorded conversion.
func (s *Service) ListNotes() ([]models.ConversionRecord, error) {
	return s.man.ListNotes()
}

// GetNote returns the record for one base name plus the produced org text.
func (s *Service) GetNote(basename string) (*NoteDetail, error) {
	rec, err := s.man.GetNote(basename)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(rec.OrgPath)
	if err != nil {
		return nil, err
	}
	return &NoteDetail{ConversionRecord: *rec, Content: string(data)}, nil
}

// Table returns the recorded name→identifier mapping.
func (s *Service) Table() (map[string]string, error) {
	return s.man.IDTable()
}

// ListAssets returns every recorded asset copy.
func (s *Service) ListAssets() ([]models.AssetRecord, error) {
	return s.man.ListAssets()
}
