package model

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

const (
	StatusDraft       DocumentStatus = "draft"
	StatusUnderReview DocumentStatus = "under-review"
	StatusApproved    DocumentStatus = "approved"
	StatusRejected    DocumentStatus = "rejected"
	StatusArchived    DocumentStatus = "archived"
)

// Statuses lists every lifecycle state.
var Statuses = []DocumentStatus{StatusDraft, StatusUnderReview, StatusApproved, StatusRejected, StatusArchived}

// Valid reports whether s is one of the five lifecycle states.
func (s DocumentStatus) Valid() bool {
	return slices.Contains(Statuses, s)
}

// ValidOnUpload reports whether a new document may start in s.
func (s DocumentStatus) ValidOnUpload() bool {
	return s == StatusDraft || s == StatusUnderReview || s == StatusApproved
}

// Label is the human-facing name of the status.
func (s DocumentStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusUnderReview:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusArchived:
		return "Archived"
	}
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseDocumentStatus converts a raw backend or request value to a status.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	st := DocumentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown document status %q", s)
	}
	return st, nil
}

// Document is a tracked, file-bearing record.
// TeamID and AssigneeID are empty when unset.
type Document struct {
	ID           string         `json:"id"`
	TrackingID   string         `json:"tracking_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Category     string         `json:"category"`
	Status       DocumentStatus `json:"status"`
	FileType     string         `json:"file_type"`
	FileSize     int64          `json:"file_size"`
	FilePath     string         `json:"-"`
	OwnerID      string         `json:"owner_id"`
	OwnerName    string         `json:"owner_name"`
	TeamID       string         `json:"team_id,omitempty"`
	AssigneeID   string         `json:"assignee_id,omitempty"`
	AssigneeName string         `json:"assignee_name,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// FileSizeLabel renders FileSize for display, e.g. "1.5 MB".
func (d Document) FileSizeLabel() string {
	if d.FileSize <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(d.FileSize))
}

// HistoryEntry is an append-only audit record for a document.
type HistoryEntry struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Status     DocumentStatus `json:"status"`
	Comment    string         `json:"comment"`
	UpdatedBy  string         `json:"updated_by"`
	CreatedAt  time.Time      `json:"timestamp"`
}

const (
	// MaxUploadSize is the largest accepted upload in bytes.
	MaxUploadSize = 10 * 1024 * 1024
	// DefaultCategory is used when an upload names no category.
	DefaultCategory = "Other"
	trackingPrefix  = "#TRK"
)

// AllowedExtensions is the upload allow-list.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".jpg", ".jpeg", ".png", ".gif", ".webp"}

// UploadCategories are the suggested categories offered on upload.
var UploadCategories = []string{
	"Financial", "HR", "Marketing", "Legal", "Project Management",
	"Compliance", "Training", "Procurement", "IT", "Customer Service",
}

// FileExtension returns the lower-cased extension of name including the dot.
func FileExtension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// ValidateUpload checks a file name and size against the upload rules.
func ValidateUpload(name string, size int64) error {
	ext := FileExtension(name)
	allowed := false
	for _, a := range AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("file type not allowed, use: %s", strings.Join(AllowedExtensions, ", "))
	}
	if size < 0 {
		return fmt.Errorf("file size is unknown")
	}
	if size > MaxUploadSize {
		return fmt.Errorf("file too large, maximum size is 10MB (%.1fMB selected)", float64(size)/1024/1024)
	}
	return nil
}

// TrackingID formats the human tracking id for a per-user, per-year sequence.
func TrackingID(year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", trackingPrefix, year, seq)
}

// StoragePath returns the object key of a document's file.
func StoragePath(ownerID, documentID, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s/%s.%s", ownerID, documentID, documentID, ext)
}
