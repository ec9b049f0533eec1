// Package session keeps a per-user snapshot of documents, teams and
// notifications in sync with the backend.
//
// Every mutation goes to the backend first and is followed by a refresh of
// the affected lists, so a snapshot only ever holds backend-confirmed state.
// Snapshots are immutable and swapped atomically; readers never see a
// partially refreshed list.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"doctrack/internal/apperr"
	"doctrack/internal/logger"
	"doctrack/internal/model"
	"doctrack/internal/service"
)

// Session orchestrates one user's reads and mutations.
type Session struct {
	user          model.User
	documents     service.DocumentService
	teams         service.TeamService
	notifications service.NotificationService

	snap   atomic.Pointer[Snapshot]
	guard  inflight
	now    func() time.Time
	loaded atomic.Bool
}

// New creates a session for user with an empty snapshot.
func New(user model.User, documents service.DocumentService, teams service.TeamService, notifications service.NotificationService) *Session {
	s := &Session{
		user:          user,
		documents:     documents,
		teams:         teams,
		notifications: notifications,
		now:           time.Now,
	}
	s.snap.Store(&Snapshot{User: user})
	return s
}

func (s *Session) User() model.User {
	return s.user
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (s *Session) Snapshot() *Snapshot {
	return s.snap.Load()
}

// publish swaps in a copy of the current snapshot changed by update.
func (s *Session) publish(update func(*Snapshot)) {
	for {
		old := s.snap.Load()
		next := old.clone()
		update(next)
		next.RefreshedAt = s.now()
		if s.snap.CompareAndSwap(old, next) {
			return
		}
	}
}

// RefreshDocuments reloads owned and team-scoped documents in parallel and
// replaces the document list with their merge.
func (s *Session) RefreshDocuments(ctx context.Context) error {
	var owned, shared []model.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = s.documents.ListOwned(gctx, s.user)
		return err
	})
	g.Go(func() error {
		var err error
		shared, err = s.documents.ListShared(gctx, s.user)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	docs := mergeDocuments(owned, shared)
	s.publish(func(next *Snapshot) { next.Documents = docs })
	return nil
}

// RefreshTeams reloads the user's teams with roles and member counts.
func (s *Session) RefreshTeams(ctx context.Context) error {
	teams, err := s.teams.ListForUser(ctx, s.user)
	if err != nil {
		return err
	}
	s.publish(func(next *Snapshot) { next.Teams = teams })
	return nil
}

func (s *Session) RefreshNotifications(ctx context.Context) error {
	items, err := s.notifications.List(ctx, s.user)
	if err != nil {
		return err
	}
	s.publish(func(next *Snapshot) { next.Notifications = items })
	return nil
}

// RefreshAll reloads every list.
func (s *Session) RefreshAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.RefreshDocuments(gctx) })
	g.Go(func() error { return s.RefreshTeams(gctx) })
	g.Go(func() error { return s.RefreshNotifications(gctx) })
	if err := g.Wait(); err != nil {
		return err
	}
	s.loaded.Store(true)
	return nil
}

// Ensure loads the snapshot once and returns it.
func (s *Session) Ensure(ctx context.Context) (*Snapshot, error) {
	if !s.loaded.Load() {
		if err := s.RefreshAll(ctx); err != nil {
			return nil, err
		}
	}
	return s.Snapshot(), nil
}

type refreshFunc func(*Session, context.Context) error

var (
	refreshDocuments     refreshFunc = (*Session).RefreshDocuments
	refreshTeams         refreshFunc = (*Session).RefreshTeams
	refreshNotifications refreshFunc = (*Session).RefreshNotifications
)

// run executes mutate under the in-flight guard for key and then the given refreshes.
func (s *Session) run(ctx context.Context, key string, mutate func() error, refresh ...refreshFunc) error {
	release, err := s.guard.acquire(key)
	if err != nil {
		return err
	}
	defer release()

	if err := mutate(); err != nil {
		return err
	}
	for _, r := range refresh {
		if err := r(s, ctx); err != nil {
			return apperr.Backend(err, "refresh after "+key)
		}
	}
	return nil
}

// Upload stores a new document.
func (s *Session) Upload(ctx context.Context, in service.CreateDocumentInput) (*model.Document, error) {
	var doc *model.Document
	err := s.run(ctx, "create_document:"+uploadKey(in), func() error {
		var err error
		doc, err = s.documents.Create(ctx, s.user, in)
		return err
	}, refreshDocuments, refreshNotifications)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// uploadKey names an upload for the in-flight guard. Without a client key,
// two uploads only collide when title, file name and size all match.
func uploadKey(in service.CreateDocumentInput) string {
	if in.IdempotencyKey != "" {
		return in.IdempotencyKey
	}
	return fmt.Sprintf("%s|%s|%d", strings.TrimSpace(in.Title), in.FileName, in.Size)
}

// Document fetches a single visible document from the backend.
func (s *Session) Document(ctx context.Context, id string) (*model.Document, error) {
	return s.documents.Get(ctx, s.user, id)
}

// History returns a document's history newest first.
func (s *Session) History(ctx context.Context, id string) ([]model.HistoryEntry, error) {
	entries, err := s.documents.History(ctx, s.user, id)
	if err != nil {
		return nil, err
	}
	return NewestFirst(entries), nil
}

func (s *Session) DownloadURL(ctx context.Context, id string) (string, error) {
	return s.documents.DownloadURL(ctx, s.user, id)
}

// OpenFile streams the document's stored file.
func (s *Session) OpenFile(ctx context.Context, id string) (*service.File, error) {
	return s.documents.Open(ctx, s.user, id)
}

func (s *Session) UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, comment string) error {
	return s.run(ctx, "update_status:"+id, func() error {
		return s.documents.UpdateStatus(ctx, s.user, id, status, comment)
	}, refreshDocuments, refreshNotifications)
}

func (s *Session) AddComment(ctx context.Context, id, text string) error {
	return s.run(ctx, "add_comment:"+id, func() error {
		return s.documents.AddComment(ctx, s.user, id, text)
	}, refreshNotifications)
}

func (s *Session) UpdateTeam(ctx context.Context, id, teamID string) error {
	return s.run(ctx, "update_team:"+id, func() error {
		return s.documents.UpdateTeam(ctx, s.user, id, teamID)
	}, refreshDocuments)
}

func (s *Session) UpdateAssignment(ctx context.Context, id, assigneeID string) error {
	return s.run(ctx, "update_assignment:"+id, func() error {
		return s.documents.UpdateAssignment(ctx, s.user, id, assigneeID)
	}, refreshDocuments)
}

// DeleteDocument removes a document. The refresh afterwards is best effort:
// the document is already gone, so a failed refresh is only logged.
func (s *Session) DeleteDocument(ctx context.Context, id string) error {
	err := s.run(ctx, "delete_document:"+id, func() error {
		return s.documents.Delete(ctx, s.user, id)
	})
	if err != nil {
		return err
	}
	if err := s.RefreshDocuments(ctx); err != nil {
		logger.FromContext(ctx).Warn("refresh after delete failed",
			zap.String("document_id", id),
			zap.Error(err),
		)
	}
	return nil
}

func (s *Session) CreateTeam(ctx context.Context, name string) (*model.Team, error) {
	var team *model.Team
	err := s.run(ctx, "create_team", func() error {
		var err error
		team, err = s.teams.Create(ctx, s.user, name)
		return err
	}, refreshTeams)
	if err != nil {
		return nil, err
	}
	return team, nil
}

// Members lists a team's members from the backend.
func (s *Session) Members(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	return s.teams.Members(ctx, s.user, teamID)
}

func (s *Session) AddMember(ctx context.Context, teamID, email string, role model.TeamRole) (*model.TeamMember, error) {
	var m *model.TeamMember
	err := s.run(ctx, "add_member:"+teamID, func() error {
		var err error
		m, err = s.teams.AddMemberByEmail(ctx, s.user, teamID, email, role)
		return err
	}, refreshTeams)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Session) RemoveMember(ctx context.Context, teamID, userID string) error {
	refresh := []refreshFunc{refreshTeams}
	if userID == s.user.ID {
		refresh = append(refresh, refreshDocuments)
	}
	return s.run(ctx, "remove_member:"+teamID+":"+userID, func() error {
		return s.teams.RemoveMember(ctx, s.user, teamID, userID)
	}, refresh...)
}

func (s *Session) LeaveTeam(ctx context.Context, teamID string) error {
	return s.run(ctx, "leave_team:"+teamID, func() error {
		return s.teams.Leave(ctx, s.user, teamID)
	}, refreshTeams, refreshDocuments)
}

func (s *Session) TransferOwnership(ctx context.Context, teamID, userID string) error {
	return s.run(ctx, "transfer_ownership:"+teamID, func() error {
		return s.teams.TransferOwnership(ctx, s.user, teamID, userID)
	}, refreshTeams)
}

func (s *Session) DeleteTeam(ctx context.Context, teamID string) error {
	return s.run(ctx, "delete_team:"+teamID, func() error {
		return s.teams.Delete(ctx, s.user, teamID)
	}, refreshTeams, refreshDocuments)
}

func (s *Session) MarkNotificationRead(ctx context.Context, id string) error {
	return s.run(ctx, "mark_read:"+id, func() error {
		return s.notifications.MarkRead(ctx, s.user, id)
	}, refreshNotifications)
}

func (s *Session) MarkAllNotificationsRead(ctx context.Context) error {
	return s.run(ctx, "mark_all_read", func() error {
		return s.notifications.MarkAllRead(ctx, s.user)
	}, refreshNotifications)
}

// inflight rejects a second concurrent submission of the same operation.
type inflight struct {
	mu  sync.Mutex
	ops map[string]struct{}
}

func (g *inflight) acquire(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ops == nil {
		g.ops = make(map[string]struct{})
	}
	if _, busy := g.ops[key]; busy {
		return nil, apperr.Conflict("this action is already in progress")
	}
	g.ops[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.ops, key)
		g.mu.Unlock()
	}, nil
}
