package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"doctrack/internal/apperr"
	"doctrack/internal/logger"
	"doctrack/internal/model"
	"doctrack/internal/permission"
	"doctrack/internal/repository"
	"doctrack/internal/storage"
)

const (
	defaultStatusComment = "Status updated"
	createdComment       = "Document created"
	downloadURLExpiry    = 15 * time.Minute
	originalFilenameKey  = "original-filename"
)

// CreateDocumentInput carries an upload and its metadata.
type CreateDocumentInput struct {
	Title       string
	Description string
	Category    string
	Status      model.DocumentStatus
	TeamID      string
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
	// IdempotencyKey identifies one client submission. It is not stored.
	IdempotencyKey string
}

// DocumentService defines the document use cases. actor is always the authenticated caller.
type DocumentService interface {
	// Create validates the upload, stores the file, then saves the document and its first
	// history entry. The stored file is removed again if the database write fails.
	Create(ctx context.Context, actor model.User, in CreateDocumentInput) (*model.Document, error)

	// Get returns a document visible to actor.
	Get(ctx context.Context, actor model.User, id string) (*model.Document, error)

	// History returns a visible document's history in insertion order.
	History(ctx context.Context, actor model.User, id string) ([]model.HistoryEntry, error)

	// ListOwned returns the documents owned by actor.
	ListOwned(ctx context.Context, actor model.User) ([]model.Document, error)

	// ListShared returns documents scoped to any team actor belongs to.
	ListShared(ctx context.Context, actor model.User) ([]model.Document, error)

	// UpdateStatus moves the document to status and records one history entry. Owner only.
	UpdateStatus(ctx context.Context, actor model.User, id string, status model.DocumentStatus, comment string) error

	// AddComment records a comment carrying the current status. Owner or team members.
	AddComment(ctx context.Context, actor model.User, id, text string) error

	// UpdateTeam shares the document with teamID, or unshares it when teamID is empty. Owner only.
	UpdateTeam(ctx context.Context, actor model.User, id, teamID string) error

	// UpdateAssignment assigns the document to a member of its team, or clears it. Owner only.
	UpdateAssignment(ctx context.Context, actor model.User, id, assigneeID string) error

	// Delete removes the document, then its stored file. Owner only.
	Delete(ctx context.Context, actor model.User, id string) error

	// DownloadURL returns a short-lived link to a visible document's file.
	DownloadURL(ctx context.Context, actor model.User, id string) (string, error)

	// Open streams a visible document's file. The caller closes File.Content.
	Open(ctx context.Context, actor model.User, id string) (*File, error)
}

// File is an open stored document file.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.ReadCloser
}

type documentService struct {
	store         storage.Storage
	docs          repository.DocumentRepository
	teams         repository.TeamRepository
	notifications repository.NotificationRepository
	metrics       *Metrics
	now           func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	teams repository.TeamRepository,
	notifications repository.NotificationRepository,
	metrics *Metrics,
) DocumentService {
	return &documentService{
		store:         store,
		docs:          docs,
		teams:         teams,
		notifications: notifications,
		metrics:       metrics,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) Create(ctx context.Context, actor model.User, in CreateDocumentInput) (doc *model.Document, err error) {
	defer func() { s.metrics.observe("create_document", err) }()

	if in.Content == nil {
		return nil, apperr.Validation("file is required")
	}
	if err := model.ValidateUpload(in.FileName, in.Size); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	status := in.Status
	if status == "" {
		status = model.StatusDraft
	}
	if !status.ValidOnUpload() {
		return nil, apperr.Validation("a new document must be draft, under-review or approved")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = model.DefaultCategory
	}
	teamID := strings.TrimSpace(in.TeamID)
	if teamID != "" {
		if err := s.checkCanShare(ctx, actor, teamID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	seq, err := s.docs.NextTrackingSequence(ctx, actor.ID, now.Year())
	if err != nil {
		return nil, apperr.Backend(err, "allocate tracking id")
	}

	id := uuid.NewString()
	ext := model.FileExtension(in.FileName)
	key := model.StoragePath(actor.ID, id, ext)
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj, err := s.store.Put(ctx, key, in.Content, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			originalFilenameKey: in.FileName,
		},
	})
	if err != nil {
		return nil, apperr.Backend(err, "upload to storage")
	}

	doc = &model.Document{
		ID:          id,
		TrackingID:  model.TrackingID(now.Year(), seq),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Status:      status,
		FileType:    strings.ToUpper(strings.TrimPrefix(ext, ".")),
		FileSize:    in.Size,
		FilePath:    obj.Key,
		OwnerID:     actor.ID,
		OwnerName:   actor.Name(),
		TeamID:      teamID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	entry := &model.HistoryEntry{
		ID:         uuid.NewString(),
		DocumentID: id,
		Status:     status,
		Comment:    createdComment,
		UpdatedBy:  actor.Name(),
		CreatedAt:  now,
	}

	stored, err := s.docs.CreateWithHistory(ctx, doc, entry)
	if err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			return nil, apperr.Backend(fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr), "save document")
		}
		return nil, apperr.Backend(fmt.Errorf("db save failed: %w", err), "save document")
	}

	notify(ctx, s.notifications, now, model.Notification{
		UserID:  actor.ID,
		Title:   "Document Uploaded",
		Message: fmt.Sprintf("%q has been added to your documents.", title),
		Type:    model.NotificationSuccess,
		Link:    model.DocumentLink(stored.ID),
	})
	return stored, nil
}

// checkCanShare requires actor to hold a sharing role in teamID.
func (s *documentService) checkCanShare(ctx context.Context, actor model.User, teamID string) error {
	m, err := s.teams.FindMember(ctx, teamID, actor.ID)
	if err != nil {
		return lookupErr(err, apperr.Authorization("you are not a member of this team"), "find team membership")
	}
	if !permission.CanShareWithTeam(m.Role) {
		return apperr.Authorization("only team admins and managers can share documents with the team")
	}
	return nil
}

func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("document id is required")
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apperr.NotFound("document not found"), "find document")
	}
	return doc, nil
}

// findAllowed loads a document and checks it against rule. The actor's teams
// are only looked up when ownership alone does not decide.
func (s *documentService) findAllowed(ctx context.Context, actor model.User, id string, rule func(model.Document, model.User, []string) bool, denied string) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule(*doc, actor, nil) {
		return doc, nil
	}
	teamIDs, err := s.teams.TeamIDsForUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Backend(err, "list team memberships")
	}
	if !rule(*doc, actor, teamIDs) {
		return nil, apperr.Authorization(denied)
	}
	return doc, nil
}

// findVisible loads a document and checks that actor may see it.
func (s *documentService) findVisible(ctx context.Context, actor model.User, id string) (*model.Document, error) {
	return s.findAllowed(ctx, actor, id, permission.CanViewDocument, "you do not have access to this document")
}

// findOwned loads a document and checks that actor owns it.
func (s *documentService) findOwned(ctx context.Context, actor model.User, id, action string) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.CanEditDocument(*doc, actor) {
		return nil, apperr.Authorization("only the document owner can " + action)
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, actor model.User, id string) (*model.Document, error) {
	return s.findVisible(ctx, actor, id)
}

func (s *documentService) History(ctx context.Context, actor model.User, id string) ([]model.HistoryEntry, error) {
	if _, err := s.findVisible(ctx, actor, id); err != nil {
		return nil, err
	}
	items, err := s.docs.ListHistory(ctx, id)
	if err != nil {
		return nil, apperr.Backend(err, "list history")
	}
	return items, nil
}

func (s *documentService) ListOwned(ctx context.Context, actor model.User) ([]model.Document, error) {
	docs, err := s.docs.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Backend(err, "list documents")
	}
	return docs, nil
}

func (s *documentService) ListShared(ctx context.Context, actor model.User) ([]model.Document, error) {
	teamIDs, err := s.teams.TeamIDsForUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Backend(err, "list team memberships")
	}
	if len(teamIDs) == 0 {
		return []model.Document{}, nil
	}
	docs, err := s.docs.ListByTeams(ctx, teamIDs)
	if err != nil {
		return nil, apperr.Backend(err, "list team documents")
	}
	return docs, nil
}

func (s *documentService) UpdateStatus(ctx context.Context, actor model.User, id string, status model.DocumentStatus, comment string) (err error) {
	defer func() { s.metrics.observe("update_status", err) }()

	if !status.Valid() {
		return apperr.Validation(fmt.Sprintf("unknown document status %q", status))
	}
	doc, err := s.findOwned(ctx, actor, id, "change its status")
	if err != nil {
		return err
	}

	comment = strings.TrimSpace(comment)
	if comment == "" {
		comment = defaultStatusComment
	}
	now := s.now()
	entry := &model.HistoryEntry{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Status:     status,
		Comment:    comment,
		UpdatedBy:  actor.Name(),
		CreatedAt:  now,
	}
	if err := s.docs.UpdateStatus(ctx, doc.ID, status, now, entry); err != nil {
		return lookupErr(err, apperr.NotFound("document not found"), "update status")
	}

	notify(ctx, s.notifications, now, model.Notification{
		UserID:  doc.OwnerID,
		Title:   "Status Updated",
		Message: fmt.Sprintf("%s status changed to %s", doc.Title, status),
		Type:    model.NotificationSuccess,
		Link:    model.DocumentLink(doc.ID),
	})
	return nil
}

func (s *documentService) AddComment(ctx context.Context, actor model.User, id, text string) (err error) {
	defer func() { s.metrics.observe("add_comment", err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return apperr.Validation("comment cannot be empty")
	}
	doc, err := s.findAllowed(ctx, actor, id, permission.CanComment, "you cannot comment on this document")
	if err != nil {
		return err
	}

	now := s.now()
	entry := &model.HistoryEntry{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Status:     doc.Status,
		Comment:    text,
		UpdatedBy:  actor.Name(),
		CreatedAt:  now,
	}
	if err := s.docs.AppendHistory(ctx, entry); err != nil {
		return apperr.Backend(err, "add comment")
	}

	notify(ctx, s.notifications, now, model.Notification{
		UserID:  doc.OwnerID,
		Title:   "Comment Added",
		Message: fmt.Sprintf("Comment added to %s", doc.Title),
		Type:    model.NotificationInfo,
		Link:    model.DocumentLink(doc.ID),
	})
	return nil
}

func (s *documentService) UpdateTeam(ctx context.Context, actor model.User, id, teamID string) (err error) {
	defer func() { s.metrics.observe("update_team", err) }()

	doc, err := s.findOwned(ctx, actor, id, "change its sharing")
	if err != nil {
		return err
	}
	teamID = strings.TrimSpace(teamID)
	if teamID != "" {
		if err := s.checkCanShare(ctx, actor, teamID); err != nil {
			return err
		}
	}
	if err := s.docs.UpdateTeam(ctx, doc.ID, teamID, s.now()); err != nil {
		return lookupErr(err, apperr.NotFound("document not found"), "update sharing")
	}
	return nil
}

func (s *documentService) UpdateAssignment(ctx context.Context, actor model.User, id, assigneeID string) (err error) {
	defer func() { s.metrics.observe("update_assignment", err) }()

	doc, err := s.findOwned(ctx, actor, id, "change its assignment")
	if err != nil {
		return err
	}

	assigneeID = strings.TrimSpace(assigneeID)
	var assigneeName string
	if assigneeID != "" {
		if doc.TeamID == "" {
			return apperr.Validation("share the document with a team before assigning it")
		}
		m, err := s.teams.FindMember(ctx, doc.TeamID, assigneeID)
		if err != nil {
			return lookupErr(err, apperr.Validation("assignee must be a member of the document's team"), "find team membership")
		}
		assigneeName = model.User{Email: m.Email, DisplayName: m.DisplayName}.Name()
	}

	if err := s.docs.UpdateAssignment(ctx, doc.ID, assigneeID, assigneeName, s.now()); err != nil {
		return lookupErr(err, apperr.NotFound("document not found"), "update assignment")
	}
	return nil
}

func (s *documentService) Delete(ctx context.Context, actor model.User, id string) (err error) {
	defer func() { s.metrics.observe("delete_document", err) }()

	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !permission.CanDeleteDocument(*doc, actor) {
		return apperr.Authorization("only the document owner can delete it")
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		return lookupErr(err, apperr.NotFound("document not found"), "delete document")
	}
	// The row is gone; a file left behind is only an orphan in the bucket.
	if doc.FilePath != "" {
		if err := s.store.Delete(ctx, doc.FilePath); err != nil {
			logger.FromContext(ctx).Warn("stored file not removed",
				zap.String("document_id", doc.ID),
				zap.String("key", doc.FilePath),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *documentService) DownloadURL(ctx context.Context, actor model.User, id string) (string, error) {
	doc, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if doc.FilePath == "" {
		return "", apperr.NotFound("document has no stored file")
	}
	u, err := s.store.PresignGet(ctx, doc.FilePath, downloadURLExpiry)
	if err != nil {
		return "", apperr.Backend(err, "presign download")
	}
	return u, nil
}

func (s *documentService) Open(ctx context.Context, actor model.User, id string) (*File, error) {
	doc, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if doc.FilePath == "" {
		return nil, apperr.NotFound("document has no stored file")
	}
	rc, info, err := s.store.Get(ctx, doc.FilePath)
	if err != nil {
		return nil, apperr.Backend(err, "read storage")
	}
	return &File{
		Name:        downloadName(*doc, info),
		ContentType: info.ContentType,
		Size:        info.Size,
		Content:     rc,
	}, nil
}

// downloadName prefers the filename recorded at upload time.
func downloadName(doc model.Document, info storage.ObjectInfo) string {
	for k, v := range info.Metadata {
		if strings.EqualFold(k, originalFilenameKey) && v != "" {
			return v
		}
	}
	return path.Base(doc.FilePath)
}
