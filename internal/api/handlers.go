package api

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gengallery/internal/auth"
	"gengallery/internal/config"
	"gengallery/internal/model"
	"gengallery/internal/review"
	"gengallery/internal/store"
)

const defaultPerPage = 12

// Handler contains the API handlers.
type Handler struct {
	cfg      *config.Config
	store    *store.Store
	accounts *auth.AccountStore
	log      *logrus.Logger
}

func NewHandler(cfg *config.Config, st *store.Store, accounts *auth.AccountStore, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		cfg:      cfg,
		store:    st,
		accounts: accounts,
		log:      log,
	}
}

// Submit handles the multipart submission form.
func (h *Handler) Submit(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "upload too large, raise upload.max_bytes to allow bigger submissions",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := store.Submission{
		Title:          c.PostForm("title"),
		AppID:          c.PostForm("app_id"),
		GenerationTime: c.PostForm("datetime"),
		ParamsText:     c.PostForm("prompt"),
	}

	var closers []multipart.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()

	open := func(headers []*multipart.FileHeader) ([]store.UploadedFile, error) {
		out := make([]store.UploadedFile, 0, len(headers))
		for _, fh := range headers {
			if fh.Filename == "" {
				continue
			}
			f, err := fh.Open()
			if err != nil {
				return nil, errors.Wrapf(err, "open upload %s", fh.Filename)
			}
			closers = append(closers, f)
			out = append(out, store.UploadedFile{Filename: fh.Filename, Content: f})
		}
		return out, nil
	}

	if sub.Materials, err = open(form.File["materials"]); err != nil {
		respondError(c, err)
		return
	}
	if sub.Results, err = open(form.File["results"]); err != nil {
		respondError(c, err)
		return
	}

	rec, err := h.store.CreateSubmission(sub)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "record saved",
		"record_id":  rec.ID,
		"detail_url": "/record/" + rec.ID,
		"data":       recordView(rec),
	})
}

// ListRecords returns one page of records. Non-admin callers only see
// approved records; admins may filter by status.
func (h *Handler) ListRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	appID := c.Query("app_id")
	statusFilter := c.Query("status")
	isAdmin := auth.IsAdmin(c)

	entries, err := h.store.LoadIndex()
	if err != nil {
		respondError(c, err)
		return
	}

	if !isAdmin {
		entries = store.FilterByStatus(entries, model.StatusApproved)
	} else if statusFilter != "" {
		status := model.Status(statusFilter)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + statusFilter})
			return
		}
		entries = store.FilterByStatus(entries, status)
	}
	if appID != "" {
		entries = store.FilterByApp(entries, appID)
	}

	pageEntries, pagination := store.Paginate(entries, page, perPage)

	items := make([]gin.H, 0, len(pageEntries))
	for _, entry := range pageEntries {
		rec, err := h.store.LoadRecord(entry.ID, entry.AppID)
		if err != nil {
			// Dangling index entry: render from index data alone
			// rather than failing the whole listing.
			if errors.Is(err, store.ErrNotFound) {
				h.log.Debugf("detail file missing for %s, degraded rendering", entry.ID)
				items = append(items, degradedView(entry))
				continue
			}
			respondError(c, err)
			return
		}
		items = append(items, recordView(rec))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       items,
		"pagination": pagination,
	})
}

// GetRecord returns the full detail of one record. The app id is
// resolved through the index; non-approved records are only visible to
// admins.
func (h *Handler) GetRecord(c *gin.Context) {
	id := c.Param("id")

	entry, err := h.store.FindIndexEntry(id)
	if err != nil {
		respondError(c, err)
		return
	}

	rec, err := h.store.LoadRecord(id, entry.AppID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !review.CanView(rec.Status, auth.IsAdmin(c)) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "record is not public"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    recordView(rec),
	})
}

// ListApps returns the distinct app ids present in the index.
func (h *Handler) ListApps(c *gin.Context) {
	ids, err := h.store.AppIDs()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ids})
}

// recordView shapes a record for API responses: storage paths are
// stripped and the display fields the gallery frontend expects are
// attached.
func recordView(rec *model.Record) gin.H {
	pub := rec.ForPublic()
	view := gin.H{
		"id":              pub.ID,
		"created_at":      pub.CreatedAt,
		"title":           pub.Title,
		"app_id":          pub.AppID,
		"generation_time": pub.GenerationTime,
		"datetime":        pub.GenerationTime,
		"parameters":      pub.Parameters,
		"files":           pub.Files,
		"statistics":      pub.Statistics,
		"status":          pub.Status,
		"detail_url":      "/record/" + pub.ID,
		"preview":         pub.MainPreview(),
	}
	if pub.RejectReason != "" {
		view["reject_reason"] = pub.RejectReason
	}
	if cover := pub.CoverImage(); cover != "" {
		view["cover"] = cover
	}
	return view
}

// degradedView renders a listing item from index data alone, used when
// the detail file is missing.
func degradedView(entry model.IndexEntry) gin.H {
	title := entry.Title
	if title == "" {
		title = "未命名记录"
	}
	return gin.H{
		"id":              entry.ID,
		"created_at":      entry.CreatedAt,
		"title":           title,
		"app_id":          entry.AppID,
		"generation_time": entry.GenerationTime,
		"datetime":        entry.GenerationTime,
		"has_preview":     entry.HasPreview,
		"preview_type":    entry.PreviewType,
		"status":          entry.Status,
		"detail_url":      "/record/" + entry.ID,
	}
}

// respondError maps store errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case store.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "record not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}
