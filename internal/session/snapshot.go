package session

import (
	"sort"
	"time"

	"doctrack/internal/model"
	"doctrack/internal/search"
)

const recentLimit = 6

// Snapshot is one user's view of the backend at a point in time.
// A Snapshot is never modified after it is published; refreshes publish a new one.
type Snapshot struct {
	User          model.User
	Documents     []model.Document
	Teams         []model.Team
	Notifications []model.Notification
	RefreshedAt   time.Time
}

func (s *Snapshot) clone() *Snapshot {
	c := *s
	return &c
}

// Tab narrows a document list the way the dashboard tabs do.
type Tab string

const (
	TabAll      Tab = "all"
	TabPending  Tab = "pending"
	TabSigned   Tab = "signed"
	TabRejected Tab = "rejected"
)

func (t Tab) match(doc model.Document) bool {
	switch t {
	case TabPending:
		return doc.Status == model.StatusUnderReview
	case TabSigned:
		return doc.Status == model.StatusApproved
	case TabRejected:
		return doc.Status == model.StatusRejected
	}
	return true
}

// View selects a base list of documents.
type View string

const (
	ViewAll      View = "all"
	ViewDrafts   View = "drafts"
	ViewInbox    View = "inbox"
	ViewSent     View = "sent"
	ViewArchived View = "archived"
	ViewTeam     View = "team"
)

// Filter describes a document list query. Zero fields do not filter.
type Filter struct {
	View     View
	TeamID   string
	Tab      Tab
	Status   model.DocumentStatus
	Category string
	Query    string
}

// Stats are the dashboard counters.
type Stats struct {
	Total          int `json:"total"`
	InProgress     int `json:"in_progress"`
	Completed      int `json:"completed"`
	NeedsAttention int `json:"needs_attention"`
}

func (s *Snapshot) where(keep func(model.Document) bool) []model.Document {
	out := make([]model.Document, 0, len(s.Documents))
	for _, d := range s.Documents {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Drafts returns documents still in draft.
func (s *Snapshot) Drafts() []model.Document {
	return s.where(func(d model.Document) bool { return d.Status == model.StatusDraft })
}

// Inbox returns documents awaiting review.
func (s *Snapshot) Inbox() []model.Document {
	return s.where(func(d model.Document) bool { return d.Status == model.StatusUnderReview })
}

// Sent returns every document that has left draft.
func (s *Snapshot) Sent() []model.Document {
	return s.where(func(d model.Document) bool { return d.Status != model.StatusDraft })
}

func (s *Snapshot) Archived() []model.Document {
	return s.where(func(d model.Document) bool { return d.Status == model.StatusArchived })
}

// TeamDocuments returns documents shared with teamID.
func (s *Snapshot) TeamDocuments(teamID string) []model.Document {
	return s.where(func(d model.Document) bool { return teamID != "" && d.TeamID == teamID })
}

// Filter returns the documents selected by f, in snapshot order.
func (s *Snapshot) Filter(f Filter) []model.Document {
	var base []model.Document
	switch f.View {
	case ViewDrafts:
		base = s.Drafts()
	case ViewInbox:
		base = s.Inbox()
	case ViewSent:
		base = s.Sent()
	case ViewArchived:
		base = s.Archived()
	case ViewTeam:
		base = s.TeamDocuments(f.TeamID)
	default:
		base = s.Documents
	}

	out := make([]model.Document, 0, len(base))
	for _, d := range base {
		if !f.Tab.match(d) {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		if !search.Matches(d, f.Query) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Categories returns the distinct categories in use, sorted.
func (s *Snapshot) Categories() []string {
	seen := make(map[string]struct{}, len(s.Documents))
	out := make([]string, 0)
	for _, d := range s.Documents {
		if _, ok := seen[d.Category]; ok {
			continue
		}
		seen[d.Category] = struct{}{}
		out = append(out, d.Category)
	}
	sort.Strings(out)
	return out
}

func (s *Snapshot) Stats() Stats {
	st := Stats{Total: len(s.Documents)}
	for _, d := range s.Documents {
		switch d.Status {
		case model.StatusUnderReview:
			st.InProgress++
		case model.StatusApproved:
			st.Completed++
		case model.StatusRejected:
			st.NeedsAttention++
		}
	}
	return st
}

// Recent returns the most recently updated documents matching query.
func (s *Snapshot) Recent(query string) []model.Document {
	docs := search.Filter(s.Documents, query)
	if len(docs) > recentLimit {
		docs = docs[:recentLimit]
	}
	return docs
}

// Document looks up a document in the snapshot.
func (s *Snapshot) Document(id string) (model.Document, bool) {
	for _, d := range s.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return model.Document{}, false
}

// Neighbors returns the documents before and after id in snapshot order.
func (s *Snapshot) Neighbors(id string) (prev, next *model.Document) {
	for i := range s.Documents {
		if s.Documents[i].ID != id {
			continue
		}
		if i > 0 {
			p := s.Documents[i-1]
			prev = &p
		}
		if i < len(s.Documents)-1 {
			n := s.Documents[i+1]
			next = &n
		}
		return prev, next
	}
	return nil, nil
}

// Team looks up one of the user's teams.
func (s *Snapshot) Team(id string) (model.Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return model.Team{}, false
}

func (s *Snapshot) UnreadCount() int {
	n := 0
	for _, item := range s.Notifications {
		if !item.Read {
			n++
		}
	}
	return n
}

// NewestFirst returns history entries in display order without touching entries.
func NewestFirst(entries []model.HistoryEntry) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

// mergeDocuments combines owned and team-scoped documents. On an id
// collision the owned copy wins. The result is sorted by UpdatedAt, newest first.
func mergeDocuments(owned, shared []model.Document) []model.Document {
	seen := make(map[string]struct{}, len(owned)+len(shared))
	out := make([]model.Document, 0, len(owned)+len(shared))
	for _, d := range owned {
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	for _, d := range shared {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
