package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Metadata describes one extracted document
type Metadata struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Timestamp  string `json:"timestamp"` // RFC3339 format
	Hash       string `json:"hash"`      // SHA256 hex digest of the cleaned text
	Chars      int    `json:"chars"`
	Pages      int    `json:"pages,omitempty"`
	EmptyPages int    `json:"empty_pages,omitempty"`
	Latin1     bool   `json:"latin1,omitempty"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(path, format, content string) *Metadata {
	return &Metadata{
		Path:      path,
		Format:    format,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Chars:     len([]rune(content)),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
