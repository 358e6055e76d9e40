package store

import (
	"sort"

	"gengallery/internal/model"
)

// Pagination describes one page of index entries.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices entries for the requested page. Consumers rely on
// the index being newest first, so no sorting happens here.
func Paginate(entries []model.IndexEntry, page, perPage int) ([]model.IndexEntry, Pagination) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	total := len(entries)
	p := Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	start := (page - 1) * perPage
	if start >= total {
		return nil, p
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return entries[start:end], p
}

// FilterByApp keeps entries belonging to appID.
func FilterByApp(entries []model.IndexEntry, appID string) []model.IndexEntry {
	out := make([]model.IndexEntry, 0, len(entries))
	for _, e := range entries {
		if e.AppID == appID {
			out = append(out, e)
		}
	}
	return out
}

// FilterByStatus keeps entries in the given moderation state.
func FilterByStatus(entries []model.IndexEntry, status model.Status) []model.IndexEntry {
	out := make([]model.IndexEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// AppIDs returns the distinct app ids present in the index, sorted.
func (s *Store) AppIDs() ([]string, error) {
	entries, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, e := range entries {
		if e.AppID != "" {
			seen[e.AppID] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// StatusCounts aggregates records per moderation state.
type StatusCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func (c *StatusCounts) add(status model.Status) {
	c.Total++
	switch status {
	case model.StatusApproved:
		c.Approved++
	case model.StatusRejected:
		c.Rejected++
	default:
		c.Pending++
	}
}

// ReviewStats are the moderation counters, globally and per app id.
type ReviewStats struct {
	Overall StatusCounts            `json:"overall"`
	Apps    map[string]StatusCounts `json:"apps"`
}

// Stats computes review statistics from the index alone.
func (s *Store) Stats() (*ReviewStats, error) {
	entries, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}
	stats := &ReviewStats{Apps: map[string]StatusCounts{}}
	for _, e := range entries {
		stats.Overall.add(e.Status)
		app := e.AppID
		if app == "" {
			app = defaultPartition
		}
		counts := stats.Apps[app]
		counts.add(e.Status)
		stats.Apps[app] = counts
	}
	return stats, nil
}

// SetStatus applies a moderation decision to the detail record first,
// then to the index entry. The two writes are deliberately not
// transactional; a crash in between leaves a tolerated inconsistency.
func (s *Store) SetStatus(id, appID string, status model.Status, reason string) error {
	rec, err := s.LoadRecord(id, appID)
	if err != nil {
		return err
	}
	rec.Status = status
	rec.ReviewStatus = status
	if status == model.StatusRejected {
		rec.RejectReason = reason
	} else {
		rec.RejectReason = ""
	}
	if err := s.SaveRecord(rec); err != nil {
		return err
	}

	entries, err := s.LoadIndex()
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Status = status
		}
	}
	return s.SaveIndex(entries)
}
