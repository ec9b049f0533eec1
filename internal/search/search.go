// Package search implements free-text matching of documents.
package search

import (
	"strings"

	"doctrack/internal/model"
)

// Matches reports whether doc contains query, case-insensitively, in its
// title, description, tracking id, owner name, category or status.
// An empty or whitespace-only query matches every document.
func Matches(doc model.Document, query string) bool {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return true
	}
	for _, field := range [...]string{
		doc.Title,
		doc.Description,
		doc.TrackingID,
		doc.OwnerName,
		doc.Category,
		string(doc.Status),
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Filter returns the documents matching query, preserving order.
func Filter(docs []model.Document, query string) []model.Document {
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if Matches(d, query) {
			out = append(out, d)
		}
	}
	return out
}
