package repository

import (
	"context"
	"time"

	"doctrack/internal/model"
)

// DocumentRepository defines data access for documents and their history using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// NextTrackingSequence allocates the next per-owner, per-year tracking sequence, starting at 1.
	NextTrackingSequence(ctx context.Context, ownerID string, year int) (int, error)

	// CreateWithHistory inserts a document together with its first history entry.
	// Returns the stored document.
	CreateWithHistory(ctx context.Context, doc *model.Document, entry *model.HistoryEntry) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByOwner returns the documents owned by ownerID, most recently updated first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error)

	// ListByTeams returns the documents scoped to any of teamIDs, most recently updated first.
	ListByTeams(ctx context.Context, teamIDs []string) ([]model.Document, error)

	// UpdateStatus sets the status and appends entry in one transaction.
	UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, at time.Time, entry *model.HistoryEntry) error

	// UpdateTeam sets or clears (empty teamID) the sharing scope. The assignment
	// is cleared when the team changes.
	UpdateTeam(ctx context.Context, id, teamID string, at time.Time) error

	// UpdateAssignment sets or clears (empty assigneeID) the assignee.
	UpdateAssignment(ctx context.Context, id, assigneeID, assigneeName string, at time.Time) error

	// AppendHistory inserts a history entry.
	AppendHistory(ctx context.Context, entry *model.HistoryEntry) error

	// ListHistory returns a document's history in insertion order.
	ListHistory(ctx context.Context, documentID string) ([]model.HistoryEntry, error)

	// Delete removes a document by ID; its history rows cascade. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}
