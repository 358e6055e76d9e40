package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gengallery/internal/classify"
	"gengallery/internal/model"
	"gengallery/internal/params"
)

// UploadedFile is one incoming file of a submission.
type UploadedFile struct {
	Filename string
	Content  io.Reader
}

// Submission carries the multipart form fields of a new record.
type Submission struct {
	Title          string
	AppID          string
	GenerationTime string
	ParamsText     string
	Materials      []UploadedFile
	Results        []UploadedFile
}

// CreateSubmission validates and persists a new record: files are
// classified and stored with derived previews, statistics are computed
// once, the detail file is written, and finally the index entry is
// prepended. The index insertion is the visibility commit point;
// listing order is newest first.
func (s *Store) CreateSubmission(sub Submission) (*model.Record, error) {
	if sub.Title == "" || sub.AppID == "" || sub.GenerationTime == "" || sub.ParamsText == "" {
		return nil, validationf("title, app_id, datetime and parameters are all required")
	}

	materials, err := s.storeFiles(sub.Materials, s.uploadDir, "uploads")
	if err != nil {
		return nil, err
	}
	results, err := s.storeFiles(sub.Results, s.generatedDir, "generated")
	if err != nil {
		return nil, err
	}

	var totalSize int64
	for _, f := range materials {
		totalSize += f.Size
	}
	for _, f := range results {
		totalSize += f.Size
	}

	now := time.Now()
	rec := &model.Record{
		ID:             NewRecordID(now),
		CreatedAt:      now,
		Title:          sub.Title,
		AppID:          sub.AppID,
		GenerationTime: sub.GenerationTime,
		Parameters:     params.Parse(sub.ParamsText),
		Files: model.FileSet{
			Materials: materials,
			Results:   results,
		},
		Statistics: model.Statistics{
			MaterialCount: len(materials),
			ResultCount:   len(results),
			TotalSize:     totalSize,
		},
		Status:       model.StatusPending,
		ReviewStatus: model.StatusPending,
	}

	if err := s.SaveRecord(rec); err != nil {
		return nil, err
	}

	entries, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}
	entries = append([]model.IndexEntry{rec.IndexEntry()}, entries...)
	if err := s.SaveIndex(entries); err != nil {
		return nil, err
	}

	return rec, nil
}

// storeFiles writes uploads to destDir and builds their entries.
// folder is the public URL segment the directory is served under.
func (s *Store) storeFiles(files []UploadedFile, destDir, folder string) ([]model.FileEntry, error) {
	out := make([]model.FileEntry, 0, len(files))
	for _, f := range files {
		if f.Filename == "" {
			continue
		}
		if !classify.IsAllowed(f.Filename) {
			return nil, validationf("unsupported file type: %s", f.Filename)
		}

		filename := SanitizeFilename(f.Filename)
		fullPath := filepath.Join(destDir, filename)

		size, err := writeFile(fullPath, f.Content)
		if err != nil {
			return nil, err
		}

		entry := model.FileEntry{
			ID:       uuid.New().String(),
			Filename: filename,
			Category: classify.Classify(filename),
			MimeType: classify.MimeType(filename),
			Size:     size,
			Path:     "/" + folder + "/" + filename,
			FullPath: fullPath,
		}
		entry.Preview = s.previews.Generate(entry, folder)
		out = append(out, entry)
	}
	return out, nil
}

func writeFile(path string, content io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", path)
	}
	defer dst.Close()

	size, err := io.Copy(dst, content)
	if err != nil {
		os.Remove(path)
		return 0, errors.Wrapf(err, "write %s", path)
	}
	return size, nil
}

// NewRecordID derives the time-ordered record identifier: a lexically
// sortable timestamp token with microsecond precision.
func NewRecordID(t time.Time) string {
	return t.Format("20060102150405") + fmt.Sprintf("%06d", t.Nanosecond()/1000)
}

// SanitizeFilename flattens an uploaded file name to a safe basename:
// path components are stripped and anything outside letters, digits,
// dot, dash and underscore becomes an underscore.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}
