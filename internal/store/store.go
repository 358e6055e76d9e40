// Package store owns the two-tier persistence scheme for submission
// records: a single ordered index file for fast listing, plus one
// detail file per record partitioned by app id. It also carries the
// one-time migration from the legacy single-file format.
package store

import (
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gengallery/internal/model"
	"gengallery/internal/preview"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	indexFileName  = "index.json"
	legacyFileName = "records.json"
	recordsDirName = "records"
	// defaultPartition is used when a record carries no app id.
	defaultPartition = "default"
)

// Config holds the directory roots the store writes to.
type Config struct {
	// DataDir holds index.json, the legacy records.json and the
	// records/<app_id>/ tree.
	DataDir string
	// UploadDir receives material files, served under /uploads.
	UploadDir string
	// GeneratedDir receives result files, served under /generated.
	GeneratedDir string
}

// Store is the exclusive owner of the index file and the per-app
// detail tree. Single-process, last-writer-wins; no locking.
type Store struct {
	dataDir      string
	uploadDir    string
	generatedDir string
	indexPath    string
	legacyPath   string
	recordsDir   string

	previews *preview.Generator
	log      *logrus.Logger
}

// New creates the store and its directory layout.
func New(cfg Config, previews *preview.Generator, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{
		dataDir:      cfg.DataDir,
		uploadDir:    cfg.UploadDir,
		generatedDir: cfg.GeneratedDir,
		indexPath:    filepath.Join(cfg.DataDir, indexFileName),
		legacyPath:   filepath.Join(cfg.DataDir, legacyFileName),
		recordsDir:   filepath.Join(cfg.DataDir, recordsDirName),
		previews:     previews,
		log:          log,
	}
	for _, dir := range []string{cfg.DataDir, cfg.UploadDir, cfg.GeneratedDir, s.recordsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "create directory %s", dir)
		}
	}
	return s, nil
}

// indexFile is the on-disk shape of index.json.
type indexFile struct {
	Records    []model.IndexEntry `json:"records"`
	UpdatedAt  time.Time          `json:"updated_at"`
	TotalCount int                `json:"total_count"`
}

// LoadIndex returns the ordered index entries, newest first. When no
// index exists but a legacy single-file store does, the legacy data is
// migrated once and the migrated entries returned. With neither file
// present the listing is empty.
func (s *Store) LoadIndex() ([]model.IndexEntry, error) {
	data, err := os.ReadFile(s.indexPath)
	if err == nil {
		var idx indexFile
		if err := json.Unmarshal(data, &idx); err != nil {
			return nil, errors.Wrap(err, "parse index file")
		}
		return normalizeStatuses(idx.Records), nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read index file")
	}

	if _, err := os.Stat(s.legacyPath); err == nil {
		return s.migrateLegacy()
	}

	return nil, nil
}

// SaveIndex overwrites the index file with the given entries.
// Last-writer-wins; concurrent writers can drop each other's entries,
// a known window accepted by the design.
func (s *Store) SaveIndex(entries []model.IndexEntry) error {
	body := indexFile{
		Records:    entries,
		UpdatedAt:  time.Now(),
		TotalCount: len(entries),
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal index")
	}
	return atomicWrite(s.indexPath, data)
}

// LoadRecord reads the detail file for (id, appID). The app id is
// required to locate the partition directory; resolve it through the
// index first.
func (s *Store) LoadRecord(id, appID string) (*model.Record, error) {
	if appID == "" {
		appID = defaultPartition
	}
	data, err := os.ReadFile(filepath.Join(s.recordsDir, appID, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "read record %s/%s", appID, id)
	}
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, "parse record %s/%s", appID, id)
	}
	return &rec, nil
}

// SaveRecord writes the detail file, creating the partition directory
// when absent.
func (s *Store) SaveRecord(rec *model.Record) error {
	appID := rec.AppID
	if appID == "" {
		appID = defaultPartition
	}
	dir := filepath.Join(s.recordsDir, appID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create partition %s", appID)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshal record %s", rec.ID)
	}
	return atomicWrite(filepath.Join(dir, rec.ID+".json"), data)
}

// DeleteRecord removes the detail file. The caller also removes the
// index entry; the two steps are not transactional.
func (s *Store) DeleteRecord(id, appID string) error {
	if appID == "" {
		appID = defaultPartition
	}
	err := os.Remove(filepath.Join(s.recordsDir, appID, id+".json"))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return errors.Wrapf(err, "delete record %s/%s", appID, id)
}

// FindIndexEntry resolves a record id to its index entry (and thereby
// its app id).
func (s *Store) FindIndexEntry(id string) (*model.IndexEntry, error) {
	entries, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, ErrNotFound
}

// RemoveIndexEntry drops the entry for id from the index, if present.
func (s *Store) RemoveIndexEntry(id string) error {
	entries, err := s.LoadIndex()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return s.SaveIndex(kept)
}

// migrateLegacy converts the legacy single-file store: one detail file
// per record, a fresh index, and the legacy file renamed away so the
// migration never runs twice.
func (s *Store) migrateLegacy() ([]model.IndexEntry, error) {
	s.log.Infof("migrating legacy record store %s", s.legacyPath)

	data, err := os.ReadFile(s.legacyPath)
	if err != nil {
		return nil, errors.Wrap(err, "read legacy store")
	}
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "parse legacy store")
	}

	entries := make([]model.IndexEntry, 0, len(records))
	for i := range records {
		rec := &records[i]
		// Legacy records predate moderation; they enter the queue as
		// pending.
		if rec.Status == "" {
			rec.Status = model.StatusPending
		}
		if err := s.SaveRecord(rec); err != nil {
			return nil, err
		}
		entries = append(entries, rec.IndexEntry())
	}

	if err := s.SaveIndex(entries); err != nil {
		return nil, err
	}

	if err := os.Rename(s.legacyPath, s.legacyPath+".backup"); err != nil {
		return nil, errors.Wrap(err, "back up legacy store")
	}

	s.log.Infof("migrated %d records to the split-file format", len(records))
	return entries, nil
}

// normalizeStatuses maps entries written before the review field
// existed onto pending.
func normalizeStatuses(entries []model.IndexEntry) []model.IndexEntry {
	for i := range entries {
		if entries[i].Status == "" {
			entries[i].Status = model.StatusPending
		}
	}
	return entries
}

// atomicWrite replaces path by writing a temp file in the same
// directory and renaming it over the target, closing the partial-write
// window of a plain truncate-and-write.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "rename over %s", path)
	}
	return nil
}
