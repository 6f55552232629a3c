// Package adoctypes mounts the additional-document-type master-data screen.
package adoctypes

// AdocType is a backend-owned additional-document type.
type AdocType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RecordID implements listing.Record.
func (t AdocType) RecordID() int64 { return t.ID }
