package model

import (
	"time"
)

// Status is the moderation state of a record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known moderation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Category is the semantic kind of an uploaded file, derived from its
// extension.
type Category string

const (
	CategoryText    Category = "text"
	CategoryImage   Category = "image"
	CategoryVideo   Category = "video"
	CategoryUnknown Category = "unknown"
)

// FileEntry describes one uploaded file belonging to a record.
type FileEntry struct {
	ID       string       `json:"id"`
	Filename string       `json:"filename"`
	Category Category     `json:"category"`
	MimeType string       `json:"mime_type"`
	Size     int64        `json:"size"`
	Path     string       `json:"path"`
	FullPath string       `json:"full_path,omitempty"`
	Preview  *PreviewInfo `json:"preview,omitempty"`
}

// FileSet groups a record's files into input materials and generated
// results.
type FileSet struct {
	Materials []FileEntry `json:"materials"`
	Results   []FileEntry `json:"results"`
}

// Statistics are aggregates computed once at record creation.
type Statistics struct {
	MaterialCount int   `json:"material_count"`
	ResultCount   int   `json:"result_count"`
	TotalSize     int64 `json:"total_size"`
}

// Record is the full persisted submission.
type Record struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	Title          string     `json:"title"`
	AppID          string     `json:"app_id"`
	GenerationTime string     `json:"generation_time"`
	Parameters     Parameters `json:"parameters"`
	Files          FileSet    `json:"files"`
	Statistics     Statistics `json:"statistics"`
	Status         Status     `json:"status"`
	ReviewStatus   Status     `json:"review_status,omitempty"`
	RejectReason   string     `json:"reject_reason,omitempty"`
}

// IndexEntry is the lightweight projection of a Record kept in the
// single ordered index file (newest first).
type IndexEntry struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Title          string    `json:"title"`
	AppID          string    `json:"app_id"`
	GenerationTime string    `json:"generation_time"`
	HasPreview     bool      `json:"has_preview"`
	PreviewType    *Category `json:"preview_type"`
	Status         Status    `json:"status"`
}

// MainPreview is the representative preview of a whole record, used on
// gallery cards.
type MainPreview struct {
	Type Category     `json:"type"`
	Data *PreviewInfo `json:"data"`
}

// CoverImage returns the public path of the first image file, looking
// at results before materials. Empty string when the record has no
// image.
func (r *Record) CoverImage() string {
	for _, f := range r.Files.Results {
		if f.Category == CategoryImage {
			return f.Path
		}
	}
	for _, f := range r.Files.Materials {
		if f.Category == CategoryImage {
			return f.Path
		}
	}
	return ""
}

// MainPreview returns the first file preview of the record, results
// before materials, or nil when no file carries one.
func (r *Record) MainPreview() *MainPreview {
	for _, f := range r.Files.Results {
		if f.Preview != nil {
			return &MainPreview{Type: f.Category, Data: f.Preview}
		}
	}
	for _, f := range r.Files.Materials {
		if f.Preview != nil {
			return &MainPreview{Type: f.Category, Data: f.Preview}
		}
	}
	return nil
}

// IndexEntry derives the lightweight index projection of the record.
func (r *Record) IndexEntry() IndexEntry {
	entry := IndexEntry{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt,
		Title:          r.Title,
		AppID:          r.AppID,
		GenerationTime: r.GenerationTime,
		Status:         r.Status,
	}
	if mp := r.MainPreview(); mp != nil {
		entry.HasPreview = true
		t := mp.Type
		entry.PreviewType = &t
	}
	return entry
}

// ForPublic returns a copy of the record with storage locations
// stripped. Detail files keep full_path; API consumers never see it.
func (r *Record) ForPublic() *Record {
	out := *r
	out.Files.Materials = stripFullPath(r.Files.Materials)
	out.Files.Results = stripFullPath(r.Files.Results)
	return &out
}

func stripFullPath(entries []FileEntry) []FileEntry {
	out := make([]FileEntry, len(entries))
	for i, e := range entries {
		e.FullPath = ""
		out[i] = e
	}
	return out
}
