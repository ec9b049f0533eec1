package handler

import (
	"github.com/gofiber/fiber/v2"

	"doctrack/internal/model"
	"doctrack/internal/permission"
	"doctrack/internal/service"
	"doctrack/internal/session"
)

// documentView is a document plus its display labels.
type documentView struct {
	model.Document
	StatusLabel   string `json:"status_label"`
	FileSizeLabel string `json:"file_size_label"`
}

func viewOf(d model.Document) documentView {
	return documentView{Document: d, StatusLabel: d.Status.Label(), FileSizeLabel: d.FileSizeLabel()}
}

func viewsOf(docs []model.Document) []documentView {
	out := make([]documentView, len(docs))
	for i, d := range docs {
		out[i] = viewOf(d)
	}
	return out
}

type documentListResponse struct {
	Items      []documentView `json:"items"`
	Total      int            `json:"total"`
	Categories []string       `json:"categories"`
}

type statusOption struct {
	Value model.DocumentStatus `json:"value"`
	Label string               `json:"label"`
}

type documentOptionsResponse struct {
	Statuses          []statusOption `json:"statuses"`
	UploadStatuses    []statusOption `json:"upload_statuses"`
	Categories        []string       `json:"categories"`
	AllowedExtensions []string       `json:"allowed_extensions"`
	MaxUploadSize     int64          `json:"max_upload_size"`
}

type documentDetailResponse struct {
	Document   documentView `json:"document"`
	PreviousID string       `json:"previous_id,omitempty"`
	NextID     string       `json:"next_id,omitempty"`
	CanEdit    bool         `json:"can_edit"`
	CanDelete  bool         `json:"can_delete"`
}

type historyResponse struct {
	Items []model.HistoryEntry `json:"items"`
}

type dashboardResponse struct {
	Stats       session.Stats  `json:"stats"`
	Recent      []documentView `json:"recent"`
	Categories  []string       `json:"categories"`
	UnreadCount int            `json:"unread_count"`
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type teamRequest struct {
	TeamID string `json:"team_id"`
}

type assignmentRequest struct {
	AssigneeID string `json:"assignee_id"`
}

func parseView(v string) (session.View, bool) {
	switch view := session.View(v); view {
	case "", session.ViewAll, session.ViewDrafts, session.ViewInbox, session.ViewSent, session.ViewArchived, session.ViewTeam:
		return view, true
	}
	return "", false
}

func parseTab(v string) (session.Tab, bool) {
	switch tab := session.Tab(v); tab {
	case "", session.TabAll, session.TabPending, session.TabSigned, session.TabRejected:
		return tab, true
	}
	return "", false
}

func parseStatus(raw string) (model.DocumentStatus, bool) {
	if raw == "" {
		return "", true
	}
	st, err := model.ParseDocumentStatus(raw)
	if err != nil {
		return "", false
	}
	return st, true
}

func invalidStatus(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "invalid document status")
}

// confirmedDocument answers with the document as the refreshed snapshot holds
// it, reading it from the backend when the snapshot does not carry it.
func confirmedDocument(c *fiber.Ctx, s *session.Session, id string) error {
	if d, ok := s.Snapshot().Document(id); ok {
		return c.JSON(viewOf(d))
	}
	d, err := s.Document(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(viewOf(*d))
}

// ListDocuments returns the caller's documents, filtered.
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Param view query string false "all, drafts, inbox, sent, archived or team"
// @Param team_id query string false "Team for the team view"
// @Param tab query string false "all, pending, signed or rejected"
// @Param status query string false "Document status"
// @Param category query string false "Category"
// @Param q query string false "Search text"
// @Success 200 {object} documentListResponse
// @Failure 400 {object} errorPayload
// @Security BearerAuth
// @Router /documents [get]
func ListDocuments(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		view, ok := parseView(c.Query("view"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VIEW", "invalid view")
		}
		tab, ok := parseTab(c.Query("tab"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TAB", "invalid tab")
		}
		status, ok := parseStatus(c.Query("status"))
		if !ok {
			return invalidStatus(c)
		}

		if err := s.RefreshDocuments(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		snap := s.Snapshot()
		items := snap.Filter(session.Filter{
			View:     view,
			TeamID:   c.Query("team_id"),
			Tab:      tab,
			Status:   status,
			Category: c.Query("category"),
			Query:    c.Query("q"),
		})
		return c.JSON(documentListResponse{
			Items:      viewsOf(items),
			Total:      len(items),
			Categories: snap.Categories(),
		})
	})
}

// UploadDocument stores a file and creates its document.
//
// @Summary Upload document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param category formData string false "Category"
// @Param status formData string false "draft or under-review"
// @Param team_id formData string false "Team to share with"
// @Success 201 {object} documentView
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Security BearerAuth
// @Router /documents [post]
func UploadDocument(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "a file is required")
		}
		status, ok := parseStatus(c.FormValue("status"))
		if !ok {
			return invalidStatus(c)
		}
		teamID := c.FormValue("team_id")
		if !optionalUUID(teamID) {
			return invalidID(c)
		}

		f, err := fh.Open()
		if err != nil {
			return invalidBody(c)
		}
		defer f.Close()

		doc, err := s.Upload(c.UserContext(), service.CreateDocumentInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Category:    c.FormValue("category"),
			Status:      status,
			TeamID:      teamID,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Content:     f,

			IdempotencyKey: c.Get("Idempotency-Key"),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(viewOf(*doc))
	})
}

// GetDocument returns one document with its neighbours in the caller's list.
//
// @Summary Get document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} documentDetailResponse
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id} [get]
func GetDocument(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		doc, err := s.Document(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		snap, err := s.Ensure(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}

		user := s.User()
		res := documentDetailResponse{
			Document:  viewOf(*doc),
			CanEdit:   permission.CanEditDocument(*doc, user),
			CanDelete: permission.CanDeleteDocument(*doc, user),
		}
		prev, next := snap.Neighbors(id)
		if prev != nil {
			res.PreviousID = prev.ID
		}
		if next != nil {
			res.NextID = next.ID
		}
		return c.JSON(res)
	})
}

// DocumentHistory returns the history of a document, newest first.
//
// @Summary Document history
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} historyResponse
// @Security BearerAuth
// @Router /documents/{id}/history [get]
func DocumentHistory(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		entries, err := s.History(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(historyResponse{Items: entries})
	})
}

// UpdateDocumentStatus moves a document to a new status.
//
// @Summary Update status
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param body body updateStatusRequest true "New status"
// @Success 200 {object} documentView
// @Security BearerAuth
// @Router /documents/{id}/status [patch]
func UpdateDocumentStatus(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req updateStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		status, err := model.ParseDocumentStatus(req.Status)
		if err != nil {
			return invalidStatus(c)
		}
		if err := s.UpdateStatus(c.UserContext(), id, status, req.Comment); err != nil {
			return respondError(c, err)
		}
		return confirmedDocument(c, s, id)
	})
}

// AddDocumentComment appends a comment and answers with the updated history.
func AddDocumentComment(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req commentRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		if err := s.AddComment(c.UserContext(), id, req.Text); err != nil {
			return respondError(c, err)
		}
		entries, err := s.History(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(historyResponse{Items: entries})
	})
}

// UpdateDocumentTeam shares a document with a team, or unshares it when team_id is empty.
func UpdateDocumentTeam(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req teamRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		if !optionalUUID(req.TeamID) {
			return invalidID(c)
		}
		if err := s.UpdateTeam(c.UserContext(), id, req.TeamID); err != nil {
			return respondError(c, err)
		}
		return confirmedDocument(c, s, id)
	})
}

func UpdateDocumentAssignment(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req assignmentRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		if !optionalUUID(req.AssigneeID) {
			return invalidID(c)
		}
		if err := s.UpdateAssignment(c.UserContext(), id, req.AssigneeID); err != nil {
			return respondError(c, err)
		}
		return confirmedDocument(c, s, id)
	})
}

// DeleteDocument removes a document and its stored file.
//
// @Summary Delete document
// @Tags documents
// @Param id path string true "Document ID"
// @Success 204
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id} [delete]
func DeleteDocument(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := s.DeleteDocument(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// DownloadDocument returns a short-lived URL for the stored file.
func DownloadDocument(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		url, err := s.DownloadURL(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	})
}

// DocumentOptions returns the choices offered by the filter and upload forms.
//
// @Summary Document form options
// @Tags documents
// @Produce json
// @Success 200 {object} documentOptionsResponse
// @Security BearerAuth
// @Router /documents/options [get]
func DocumentOptions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := documentOptionsResponse{
			Statuses:          []statusOption{},
			UploadStatuses:    []statusOption{},
			Categories:        model.UploadCategories,
			AllowedExtensions: model.AllowedExtensions,
			MaxUploadSize:     model.MaxUploadSize,
		}
		for _, st := range model.Statuses {
			opt := statusOption{Value: st, Label: st.Label()}
			resp.Statuses = append(resp.Statuses, opt)
			if st.ValidOnUpload() {
				resp.UploadStatuses = append(resp.UploadStatuses, opt)
			}
		}
		return c.JSON(resp)
	}
}

// DocumentFile streams the stored file through the API.
//
// @Summary Download document file
// @Tags documents
// @Produce octet-stream
// @Param id path string true "Document ID"
// @Success 200 {file} file
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id}/file [get]
func DocumentFile(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		f, err := s.OpenFile(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		c.Attachment(f.Name)
		if f.ContentType != "" {
			c.Set(fiber.HeaderContentType, f.ContentType)
		}
		// fasthttp closes the stream once the body is written.
		return c.SendStream(f.Content, int(f.Size))
	})
}

// Dashboard returns the counters and recent documents, optionally narrowed by q.
//
// @Summary Dashboard
// @Tags documents
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} dashboardResponse
// @Security BearerAuth
// @Router /dashboard [get]
func Dashboard(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		if err := s.RefreshAll(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		snap := s.Snapshot()
		return c.JSON(dashboardResponse{
			Stats:       snap.Stats(),
			Recent:      viewsOf(snap.Recent(c.Query("q"))),
			Categories:  snap.Categories(),
			UnreadCount: snap.UnreadCount(),
		})
	})
}
