package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"gengallery/internal/auth"
	"gengallery/internal/review"
	"gengallery/internal/store"
)

// LoginRequest carries the admin credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies the admin credentials and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.accounts.Verify(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid username or password"})
		return
	}

	token, err := auth.IssueSession(h.cfg.Auth.SessionSecret, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(auth.SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "username": req.Username})
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CheckSession reports whether the caller holds an admin session.
func (h *Handler) CheckSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"is_admin": auth.IsAdmin(c),
		"username": auth.Username(c),
	})
}

// ReviewRequest is the admin moderation action applied to a batch of
// records.
type ReviewRequest struct {
	Action    review.Action `json:"action"`
	RecordIDs []string      `json:"record_ids"`
	Reason    string        `json:"reason"`
}

// Review applies an approve/reject/pending decision to each record,
// updating the detail file and then the index entry.
func (h *Handler) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.RecordIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "record_ids is required"})
		return
	}

	status, err := review.StatusFor(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := make([]string, 0, len(req.RecordIDs))
	missing := make([]string, 0)
	for _, id := range req.RecordIDs {
		entry, err := h.store.FindIndexEntry(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			respondError(c, err)
			return
		}
		if err := h.store.SetStatus(id, entry.AppID, status, req.Reason); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			respondError(c, err)
			return
		}
		updated = append(updated, id)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  status,
		"updated": updated,
		"missing": missing,
	})
}

// DeleteRequest names the records to remove.
type DeleteRequest struct {
	RecordIDs []string `json:"record_ids"`
}

// Delete removes each record's detail file and its index entry. The
// two removals are not transactional.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.RecordIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "record_ids is required"})
		return
	}

	deleted := make([]string, 0, len(req.RecordIDs))
	for _, id := range req.RecordIDs {
		entry, err := h.store.FindIndexEntry(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			respondError(c, err)
			return
		}
		if err := h.store.DeleteRecord(id, entry.AppID); err != nil && !errors.Is(err, store.ErrNotFound) {
			respondError(c, err)
			return
		}
		if err := h.store.RemoveIndexEntry(id); err != nil {
			respondError(c, err)
			return
		}
		deleted = append(deleted, id)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

// Stats returns moderation counters, globally and per app id.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.store.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
