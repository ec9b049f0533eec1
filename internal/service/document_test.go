package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"doctrack/internal/apperr"
	"doctrack/internal/model"
	repoMocks "doctrack/internal/repository/mocks"
	"doctrack/internal/storage"
	storeMocks "doctrack/internal/storage/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	alice    = model.User{ID: "user-a", Email: "alice@example.com", DisplayName: "Alice"}
	bob      = model.User{ID: "user-b", Email: "bob@example.com", DisplayName: "Bob"}
	carol    = model.User{ID: "user-c", Email: "carol@example.com"}
)

type docMocks struct {
	store         *storeMocks.MockStorage
	docs          *repoMocks.MockDocumentRepository
	teams         *repoMocks.MockTeamRepository
	notifications *repoMocks.MockNotificationRepository
}

func (m docMocks) assert(t *testing.T) {
	m.store.AssertExpectations(t)
	m.docs.AssertExpectations(t)
	m.teams.AssertExpectations(t)
	m.notifications.AssertExpectations(t)
}

func newTestDocumentService(metrics *Metrics) (*documentService, docMocks) {
	m := docMocks{
		store:         new(storeMocks.MockStorage),
		docs:          new(repoMocks.MockDocumentRepository),
		teams:         new(repoMocks.MockTeamRepository),
		notifications: new(repoMocks.MockNotificationRepository),
	}
	svc := NewDocumentService(m.store, m.docs, m.teams, m.notifications, metrics).(*documentService)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func aliceDoc() *model.Document {
	return &model.Document{
		ID:         "doc-1",
		TrackingID: "#TRK-2025-001",
		Title:      "Q4 Report",
		Category:   "Finance",
		Status:     model.StatusDraft,
		FilePath:   "user-a/doc-1/doc-1.pdf",
		OwnerID:    alice.ID,
		OwnerName:  "Alice",
	}
}

func returnStored(_ context.Context, doc *model.Document, _ *model.HistoryEntry) *model.Document {
	return doc
}

func returnKey(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
	return storage.ObjectInfo{Key: key}
}

func TestDocumentService_Create(t *testing.T) {
	ctx := context.Background()

	validInput := func() CreateDocumentInput {
		return CreateDocumentInput{
			Title:       "Q4 Report",
			Category:    "Finance",
			FileName:    "report.PDF",
			ContentType: "application/pdf",
			Size:        2048,
			Content:     strings.NewReader("%PDF"),
		}
	}

	tests := []struct {
		name       string
		input      func() CreateDocumentInput
		setupMocks func(m docMocks)
		wantKind   error
		wantErrMsg string
		check      func(t *testing.T, doc *model.Document)
	}{
		{
			name:  "first document of the year",
			input: validInput,
			setupMocks: func(m docMocks) {
				m.docs.On("NextTrackingSequence", ctx, alice.ID, 2025).Return(1, nil)
				m.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "user-a/") && strings.HasSuffix(key, ".pdf")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.Size == 2048 && opt.Metadata["original-filename"] == "report.PDF"
				})).Return(returnKey, nil)
				m.docs.On("CreateWithHistory", ctx, mock.Anything, mock.MatchedBy(func(e *model.HistoryEntry) bool {
					return e.Comment == "Document created" && e.Status == model.StatusDraft && e.UpdatedBy == "Alice"
				})).Return(returnStored, nil)
				m.notifications.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
					return n.UserID == alice.ID && n.Title == "Document Uploaded" && strings.HasPrefix(n.Link, "/documents/")
				})).Return(nil)
			},
			check: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, "#TRK-2025-001", doc.TrackingID)
				assert.Equal(t, model.StatusDraft, doc.Status)
				assert.Equal(t, "PDF", doc.FileType)
				assert.Equal(t, alice.ID, doc.OwnerID)
				assert.Equal(t, "Alice", doc.OwnerName)
				assert.Equal(t, model.StoragePath(alice.ID, doc.ID, ".pdf"), doc.FilePath)
			},
		},
		{
			name: "second document of the year",
			input: func() CreateDocumentInput {
				in := validInput()
				in.Category = ""
				in.Status = model.StatusUnderReview
				return in
			},
			setupMocks: func(m docMocks) {
				m.docs.On("NextTrackingSequence", ctx, alice.ID, 2025).Return(2, nil)
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(returnKey, nil)
				m.docs.On("CreateWithHistory", ctx, mock.Anything, mock.Anything).Return(returnStored, nil)
				m.notifications.On("Create", ctx, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, "#TRK-2025-002", doc.TrackingID)
				assert.Equal(t, "Other", doc.Category)
				assert.Equal(t, model.StatusUnderReview, doc.Status)
			},
		},
		{
			name: "disallowed extension fails before any backend call",
			input: func() CreateDocumentInput {
				in := validInput()
				in.FileName = "run.exe"
				return in
			},
			setupMocks: func(m docMocks) {},
			wantKind:   apperr.ErrValidation,
		},
		{
			name: "file too large",
			input: func() CreateDocumentInput {
				in := validInput()
				in.Size = model.MaxUploadSize + 1
				return in
			},
			setupMocks: func(m docMocks) {},
			wantKind:   apperr.ErrValidation,
			wantErrMsg: "file too large",
		},
		{
			name: "rejected is not an upload status",
			input: func() CreateDocumentInput {
				in := validInput()
				in.Status = model.StatusRejected
				return in
			},
			setupMocks: func(m docMocks) {},
			wantKind:   apperr.ErrValidation,
		},
		{
			name: "missing title",
			input: func() CreateDocumentInput {
				in := validInput()
				in.Title = "   "
				return in
			},
			setupMocks: func(m docMocks) {},
			wantKind:   apperr.ErrValidation,
		},
		{
			name: "sharing requires a sharing role",
			input: func() CreateDocumentInput {
				in := validInput()
				in.TeamID = "team-1"
				return in
			},
			setupMocks: func(m docMocks) {
				m.teams.On("FindMember", ctx, "team-1", alice.ID).
					Return(&model.TeamMember{TeamID: "team-1", UserID: alice.ID, Role: model.RoleMember}, nil)
			},
			wantKind: apperr.ErrAuthorization,
		},
		{
			name:  "storage error",
			input: validInput,
			setupMocks: func(m docMocks) {
				m.docs.On("NextTrackingSequence", ctx, alice.ID, 2025).Return(1, nil)
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantKind:   apperr.ErrBackend,
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:  "repository error removes the stored file",
			input: validInput,
			setupMocks: func(m docMocks) {
				m.docs.On("NextTrackingSequence", ctx, alice.ID, 2025).Return(1, nil)
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(returnKey, nil)
				m.docs.On("CreateWithHistory", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				m.store.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "user-a/")
				})).Return(nil)
			},
			wantKind:   apperr.ErrBackend,
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:  "repository error with failed rollback",
			input: validInput,
			setupMocks: func(m docMocks) {
				m.docs.On("NextTrackingSequence", ctx, alice.ID, 2025).Return(1, nil)
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(returnKey, nil)
				m.docs.On("CreateWithHistory", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				m.store.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
			},
			wantKind:   apperr.ErrBackend,
			wantErrMsg: "rollback delete failed: delete fail",
		},
		{
			name:  "notification failure does not fail the upload",
			input: validInput,
			setupMocks: func(m docMocks) {
				m.docs.On("NextTrackingSequence", ctx, alice.ID, 2025).Return(3, nil)
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(returnKey, nil)
				m.docs.On("CreateWithHistory", ctx, mock.Anything, mock.Anything).Return(returnStored, nil)
				m.notifications.On("Create", ctx, mock.Anything).Return(errors.New("inbox down"))
			},
			check: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, "#TRK-2025-003", doc.TrackingID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestDocumentService(nil)
			tt.setupMocks(m)

			doc, err := svc.Create(ctx, alice, tt.input())

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
				if tt.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tt.wantErrMsg)
				}
				assert.Nil(t, doc)
			} else {
				require.NoError(t, err)
				tt.check(t, doc)
			}
			m.assert(t)
		})
	}
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	shared := aliceDoc()
	shared.TeamID = "team-legal"

	tests := []struct {
		name       string
		actor      model.User
		id         string
		setupMocks func(m docMocks)
		wantKind   error
	}{
		{
			name:  "owner sees own document",
			actor: alice,
			id:    "doc-1",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
			},
		},
		{
			name:  "stranger cannot see an unshared document",
			actor: bob,
			id:    "doc-1",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.teams.On("TeamIDsForUser", ctx, bob.ID).Return([]string{"team-legal"}, nil)
			},
			wantKind: apperr.ErrAuthorization,
		},
		{
			name:  "team member sees a shared document",
			actor: carol,
			id:    "doc-1",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(shared, nil)
				m.teams.On("TeamIDsForUser", ctx, carol.ID).Return([]string{"team-ops", "team-legal"}, nil)
			},
		},
		{
			name:  "non-member cannot see a shared document",
			actor: bob,
			id:    "doc-1",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(shared, nil)
				m.teams.On("TeamIDsForUser", ctx, bob.ID).Return([]string{"team-ops"}, nil)
			},
			wantKind: apperr.ErrAuthorization,
		},
		{
			name:  "membership lookup failure",
			actor: bob,
			id:    "doc-1",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(shared, nil)
				m.teams.On("TeamIDsForUser", ctx, bob.ID).Return(nil, errors.New("db fail"))
			},
			wantKind: apperr.ErrBackend,
		},
		{
			name:  "missing document",
			actor: alice,
			id:    "missing",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantKind: apperr.ErrNotFound,
		},
		{
			name:       "empty id",
			actor:      alice,
			id:         "",
			setupMocks: func(m docMocks) {},
			wantKind:   apperr.ErrValidation,
		},
		{
			name:  "repository failure",
			actor: alice,
			id:    "doc-1",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(nil, errors.New("db fail"))
			},
			wantKind: apperr.ErrBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestDocumentService(nil)
			tt.setupMocks(m)

			doc, err := svc.Get(ctx, tt.actor, tt.id)

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
				assert.Nil(t, doc)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.id, doc.ID)
			}
			m.assert(t)
		})
	}
}

func TestDocumentService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		actor      model.User
		status     model.DocumentStatus
		comment    string
		setupMocks func(m docMocks)
		wantKind   error
	}{
		{
			name:    "owner approves with a comment",
			actor:   alice,
			status:  model.StatusApproved,
			comment: "c",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.docs.On("UpdateStatus", ctx, "doc-1", model.StatusApproved, fixedNow, mock.MatchedBy(func(e *model.HistoryEntry) bool {
					return e.Status == model.StatusApproved && e.Comment == "c" && e.UpdatedBy == "Alice" && e.CreatedAt.Equal(fixedNow)
				})).Return(nil)
				m.notifications.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
					return n.UserID == alice.ID && n.Title == "Status Updated" &&
						n.Message == "Q4 Report status changed to approved" && n.Type == model.NotificationSuccess
				})).Return(nil)
			},
		},
		{
			name:   "same status still appends an entry with the default comment",
			actor:  alice,
			status: model.StatusDraft,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.docs.On("UpdateStatus", ctx, "doc-1", model.StatusDraft, fixedNow, mock.MatchedBy(func(e *model.HistoryEntry) bool {
					return e.Comment == "Status updated"
				})).Return(nil)
				m.notifications.On("Create", ctx, mock.Anything).Return(nil)
			},
		},
		{
			name:   "non-owner is rejected without mutation",
			actor:  bob,
			status: model.StatusApproved,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
			},
			wantKind: apperr.ErrAuthorization,
		},
		{
			name:       "unknown status",
			actor:      alice,
			status:     "published",
			setupMocks: func(m docMocks) {},
			wantKind:   apperr.ErrValidation,
		},
		{
			name:   "backend failure",
			actor:  alice,
			status: model.StatusArchived,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.docs.On("UpdateStatus", ctx, "doc-1", model.StatusArchived, fixedNow, mock.Anything).Return(errors.New("db fail"))
			},
			wantKind: apperr.ErrBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestDocumentService(nil)
			tt.setupMocks(m)

			err := svc.UpdateStatus(ctx, tt.actor, "doc-1", tt.status, tt.comment)

			switch tt.wantKind {
			case nil:
				assert.NoError(t, err)
			case apperr.ErrBackend:
				assert.ErrorIs(t, err, tt.wantKind)
			default:
				assert.ErrorIs(t, err, tt.wantKind)
				m.docs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			m.assert(t)
		})
	}
}

func TestDocumentService_AddComment(t *testing.T) {
	ctx := context.Background()

	shared := aliceDoc()
	shared.TeamID = "team-legal"
	shared.Status = model.StatusUnderReview

	tests := []struct {
		name       string
		actor      model.User
		text       string
		setupMocks func(m docMocks)
		wantKind   error
	}{
		{
			name:  "team member comments with the current status",
			actor: carol,
			text:  "  looks good  ",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(shared, nil)
				m.teams.On("TeamIDsForUser", ctx, carol.ID).Return([]string{"team-legal"}, nil)
				m.docs.On("AppendHistory", ctx, mock.MatchedBy(func(e *model.HistoryEntry) bool {
					return e.Status == model.StatusUnderReview && e.Comment == "looks good" && e.UpdatedBy == "carol"
				})).Return(nil)
				m.notifications.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
					return n.UserID == alice.ID && n.Title == "Comment Added" &&
						n.Message == "Comment added to Q4 Report" && n.Type == model.NotificationInfo
				})).Return(nil)
			},
		},
		{
			name:       "whitespace comment",
			actor:      alice,
			text:       " \t ",
			setupMocks: func(m docMocks) {},
			wantKind:   apperr.ErrValidation,
		},
		{
			name:  "outsider cannot comment",
			actor: bob,
			text:  "hi",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(shared, nil)
				m.teams.On("TeamIDsForUser", ctx, bob.ID).Return([]string{}, nil)
			},
			wantKind: apperr.ErrAuthorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestDocumentService(nil)
			tt.setupMocks(m)

			err := svc.AddComment(ctx, tt.actor, "doc-1", tt.text)

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
			} else {
				assert.NoError(t, err)
			}
			m.assert(t)
		})
	}
}

func TestDocumentService_UpdateTeam(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		actor      model.User
		teamID     string
		setupMocks func(m docMocks)
		wantKind   error
	}{
		{
			name:   "manager owner shares",
			actor:  alice,
			teamID: "team-legal",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.teams.On("FindMember", ctx, "team-legal", alice.ID).
					Return(&model.TeamMember{Role: model.RoleManager}, nil)
				m.docs.On("UpdateTeam", ctx, "doc-1", "team-legal", fixedNow).Return(nil)
			},
		},
		{
			name:   "owner unshares",
			actor:  alice,
			teamID: "",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.docs.On("UpdateTeam", ctx, "doc-1", "", fixedNow).Return(nil)
			},
		},
		{
			name:   "owner outside the team",
			actor:  alice,
			teamID: "team-ops",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.teams.On("FindMember", ctx, "team-ops", alice.ID).Return(nil, sql.ErrNoRows)
			},
			wantKind: apperr.ErrAuthorization,
		},
		{
			name:   "non-owner",
			actor:  bob,
			teamID: "team-legal",
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
			},
			wantKind: apperr.ErrAuthorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestDocumentService(nil)
			tt.setupMocks(m)

			err := svc.UpdateTeam(ctx, tt.actor, "doc-1", tt.teamID)

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
			} else {
				assert.NoError(t, err)
			}
			m.assert(t)
		})
	}
}

func TestDocumentService_UpdateAssignment(t *testing.T) {
	ctx := context.Background()

	shared := aliceDoc()
	shared.TeamID = "team-legal"

	tests := []struct {
		name       string
		doc        *model.Document
		assignee   string
		setupMocks func(m docMocks, doc *model.Document)
		wantKind   error
	}{
		{
			name:     "assign a team member",
			doc:      shared,
			assignee: carol.ID,
			setupMocks: func(m docMocks, doc *model.Document) {
				m.docs.On("FindByID", ctx, "doc-1").Return(doc, nil)
				m.teams.On("FindMember", ctx, "team-legal", carol.ID).
					Return(&model.TeamMember{UserID: carol.ID, Email: carol.Email, Role: model.RoleMember}, nil)
				m.docs.On("UpdateAssignment", ctx, "doc-1", carol.ID, "carol", fixedNow).Return(nil)
			},
		},
		{
			name:     "assignee outside the team",
			doc:      shared,
			assignee: bob.ID,
			setupMocks: func(m docMocks, doc *model.Document) {
				m.docs.On("FindByID", ctx, "doc-1").Return(doc, nil)
				m.teams.On("FindMember", ctx, "team-legal", bob.ID).Return(nil, sql.ErrNoRows)
			},
			wantKind: apperr.ErrValidation,
		},
		{
			name:     "unshared document cannot be assigned",
			doc:      aliceDoc(),
			assignee: bob.ID,
			setupMocks: func(m docMocks, doc *model.Document) {
				m.docs.On("FindByID", ctx, "doc-1").Return(doc, nil)
			},
			wantKind: apperr.ErrValidation,
		},
		{
			name:     "clear assignment",
			doc:      aliceDoc(),
			assignee: "",
			setupMocks: func(m docMocks, doc *model.Document) {
				m.docs.On("FindByID", ctx, "doc-1").Return(doc, nil)
				m.docs.On("UpdateAssignment", ctx, "doc-1", "", "", fixedNow).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestDocumentService(nil)
			tt.setupMocks(m, tt.doc)

			err := svc.UpdateAssignment(ctx, alice, "doc-1", tt.assignee)

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
			} else {
				assert.NoError(t, err)
			}
			m.assert(t)
		})
	}
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		actor      model.User
		setupMocks func(m docMocks)
		wantKind   error
		wantErrMsg string
	}{
		{
			name:  "owner deletes row then file",
			actor: alice,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.docs.On("Delete", ctx, "doc-1").Return(nil)
				m.store.On("Delete", ctx, "user-a/doc-1/doc-1.pdf").Return(nil)
			},
		},
		{
			name:  "team member cannot delete",
			actor: carol,
			setupMocks: func(m docMocks) {
				doc := aliceDoc()
				doc.TeamID = "team-legal"
				m.docs.On("FindByID", ctx, "doc-1").Return(doc, nil)
			},
			wantKind: apperr.ErrAuthorization,
		},
		{
			name:  "storage failure after the row is gone still succeeds",
			actor: alice,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.docs.On("Delete", ctx, "doc-1").Return(nil)
				m.store.On("Delete", ctx, "user-a/doc-1/doc-1.pdf").Return(errors.New("storage fail"))
			},
		},
		{
			name:  "row delete failure keeps the file",
			actor: alice,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.docs.On("Delete", ctx, "doc-1").Return(errors.New("db fail"))
			},
			wantKind:   apperr.ErrBackend,
			wantErrMsg: "delete document: db fail",
		},
		{
			name:  "missing document",
			actor: alice,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(nil, sql.ErrNoRows)
			},
			wantKind: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestDocumentService(nil)
			tt.setupMocks(m)

			err := svc.Delete(ctx, tt.actor, "doc-1")

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
				if tt.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tt.wantErrMsg)
				}
				m.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			m.assert(t)
		})
	}
}

func TestDocumentService_ListShared(t *testing.T) {
	ctx := context.Background()

	t.Run("no teams", func(t *testing.T) {
		svc, m := newTestDocumentService(nil)
		m.teams.On("TeamIDsForUser", ctx, bob.ID).Return([]string{}, nil)

		docs, err := svc.ListShared(ctx, bob)

		assert.NoError(t, err)
		assert.Empty(t, docs)
		m.assert(t)
	})

	t.Run("team documents", func(t *testing.T) {
		svc, m := newTestDocumentService(nil)
		m.teams.On("TeamIDsForUser", ctx, carol.ID).Return([]string{"team-legal"}, nil)
		m.docs.On("ListByTeams", ctx, []string{"team-legal"}).Return([]model.Document{*aliceDoc()}, nil)

		docs, err := svc.ListShared(ctx, carol)

		require.NoError(t, err)
		assert.Len(t, docs, 1)
		m.assert(t)
	})
}

func TestDocumentService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestDocumentService(nil)

	m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
	m.store.On("PresignGet", ctx, "user-a/doc-1/doc-1.pdf", 15*time.Minute).Return("https://files.example/doc-1", nil)

	u, err := svc.DownloadURL(ctx, alice, "doc-1")

	assert.NoError(t, err)
	assert.Equal(t, "https://files.example/doc-1", u)
	m.assert(t)
}

func TestDocumentService_Open(t *testing.T) {
	ctx := context.Background()

	noFile := aliceDoc()
	noFile.FilePath = ""

	tests := []struct {
		name       string
		actor      model.User
		setupMocks func(m docMocks)
		wantName   string
		wantKind   error
	}{
		{
			name:  "uses the uploaded filename",
			actor: alice,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.store.On("Get", ctx, "user-a/doc-1/doc-1.pdf").Return(
					io.NopCloser(strings.NewReader("%PDF")),
					storage.ObjectInfo{Size: 4, ContentType: "application/pdf", Metadata: map[string]string{"Original-Filename": "q4.pdf"}},
					nil,
				)
			},
			wantName: "q4.pdf",
		},
		{
			name:  "falls back to the storage key",
			actor: alice,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.store.On("Get", ctx, "user-a/doc-1/doc-1.pdf").Return(
					io.NopCloser(strings.NewReader("%PDF")),
					storage.ObjectInfo{Size: 4, ContentType: "application/pdf"},
					nil,
				)
			},
			wantName: "doc-1.pdf",
		},
		{
			name:  "outsider is rejected before storage",
			actor: bob,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.teams.On("TeamIDsForUser", ctx, bob.ID).Return([]string{}, nil)
			},
			wantKind: apperr.ErrAuthorization,
		},
		{
			name:  "no stored file",
			actor: alice,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(noFile, nil)
			},
			wantKind: apperr.ErrNotFound,
		},
		{
			name:  "storage failure",
			actor: alice,
			setupMocks: func(m docMocks) {
				m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)
				m.store.On("Get", ctx, "user-a/doc-1/doc-1.pdf").Return(nil, storage.ObjectInfo{}, errors.New("minio down"))
			},
			wantKind: apperr.ErrBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestDocumentService(nil)
			tt.setupMocks(m)

			f, err := svc.Open(ctx, tt.actor, "doc-1")

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
				assert.Nil(t, f)
			} else {
				require.NoError(t, err)
				defer f.Content.Close()
				assert.Equal(t, tt.wantName, f.Name)
				assert.Equal(t, int64(4), f.Size)
				assert.Equal(t, "application/pdf", f.ContentType)
			}
			m.assert(t)
		})
	}
}

func TestDocumentService_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	svc, m := newTestDocumentService(metrics)
	m.docs.On("FindByID", ctx, "doc-1").Return(aliceDoc(), nil)

	_ = svc.UpdateStatus(ctx, bob, "doc-1", model.StatusApproved, "")
	_ = svc.AddComment(ctx, bob, "doc-1", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("update_status", "unauthorized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("add_comment", "invalid")))
}
