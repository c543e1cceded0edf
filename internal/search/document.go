// Package search indexes the tobacco collection with Bleve so the collection
// page can filter by name or brand as the user types.
package search

import (
	"strconv"

	"github.com/hookahmix/miniapp/internal/domain"
)

// Document is the indexed form of a tobacco.
type Document struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
}

// ToMap converts the document to the field names used by the mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":   d.ID,
		"name": d.Name,
	}
	if d.Brand != "" {
		m["brand"] = d.Brand
	}
	return m
}

// TobaccoToDocument converts a tobacco into its index document.
func TobaccoToDocument(t domain.Tobacco) *Document {
	return &Document{
		ID:    DocID(t.ID),
		Name:  t.Name,
		Brand: t.BrandName(),
	}
}

// DocID is the index key of a tobacco.
func DocID(tobaccoID int64) string {
	return strconv.FormatInt(tobaccoID, 10)
}
