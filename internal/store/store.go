package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"etf-watcher/internal/model"
)

// DefaultMaxChunkSize caps segment files at 4 MiB, the upload limit of the
// file hosts the lake is mirrored to.
const DefaultMaxChunkSize = 4 * 1024 * 1024

// DatasetStore is the persistence surface the update pipeline relies on.
type DatasetStore interface {
	Save(collection, kind string, records []model.ETF, format Format) (*Manifest, error)
	Load(collection, kind string) ([]model.ETF, error)
	Manifest(collection, kind string) (*Manifest, error)
}

// Options configure the flat-file store.
type Options struct {
	Root         string
	MaxChunkSize int
}

// Store persists datasets as size-bounded segment files plus a manifest,
// one directory per collection.
type Store struct {
	root      string
	chunkSize int
	logger    zerolog.Logger
}

// New prepares the store root and returns a Store handle.
func New(opts Options, logger zerolog.Logger) (*Store, error) {
	if opts.Root == "" {
		return nil, errors.New("store root directory is required")
	}
	chunkSize := opts.MaxChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultMaxChunkSize
	}
	if err := os.MkdirAll(opts.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}

	return &Store{
		root:      opts.Root,
		chunkSize: chunkSize,
		logger:    logger.With().Str("component", "store").Logger(),
	}, nil
}

// Save serializes records in the requested format and writes them as one or
// more segments under the collection directory. Segments land before the
// manifest, and the manifest rename is the commit point; files from a
// previous save that the new manifest no longer references are removed
// afterwards.
func (s *Store) Save(collection, kind string, records []model.ETF, format Format) (*Manifest, error) {
	col, err := SanitizeName(collection)
	if err != nil {
		return nil, err
	}
	knd, err := SanitizeName(kind)
	if err != nil {
		return nil, err
	}
	if err := format.validate(); err != nil {
		return nil, err
	}

	dir, err := s.datasetDir(col)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create collection dir: %w", err)
	}

	items, err := encodeRecords(records, format)
	if err != nil {
		return nil, err
	}
	groups := packSegments(items, s.chunkSize, format)

	manifest := &Manifest{
		Collection:  col,
		Kind:        knd,
		UpdatedAt:   time.Now().UTC(),
		RecordCount: len(records),
		Format:      format,
		Chunked:     len(groups) > 1,
	}

	if manifest.Chunked {
		manifest.ChunkCount = len(groups)
		for i, group := range groups {
			name := fmt.Sprintf("%s_part%d.%s", knd, i, format.ext())
			payload, err := segmentPayload(group, format)
			if err != nil {
				return nil, err
			}
			if err := writeFileAtomic(dir, name, payload); err != nil {
				return nil, err
			}
			manifest.Chunks = append(manifest.Chunks, ChunkInfo{File: name, Count: len(group), Bytes: len(payload)})
			manifest.TotalBytes += len(payload)
		}
	} else {
		name := knd + "." + format.ext()
		payload, err := segmentPayload(groups[0], format)
		if err != nil {
			return nil, err
		}
		if err := writeFileAtomic(dir, name, payload); err != nil {
			return nil, err
		}
		manifest.File = name
		manifest.TotalBytes = len(payload)
	}

	if err := s.writeManifest(dir, knd, manifest); err != nil {
		return nil, err
	}
	s.purgeStale(dir, knd, manifest)

	s.logger.Info().
		Str("collection", col).
		Str("kind", knd).
		Str("format", string(format)).
		Int("records", manifest.RecordCount).
		Bool("chunked", manifest.Chunked).
		Int("total_bytes", manifest.TotalBytes).
		Msg("dataset saved")

	return manifest, nil
}

// Load reads a dataset back in segment order. A dataset that was never
// written yields an empty slice and no error.
func (s *Store) Load(collection, kind string) ([]model.ETF, error) {
	manifest, err := s.Manifest(collection, kind)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return []model.ETF{}, nil
	}

	dir, err := s.datasetDir(manifest.Collection)
	if err != nil {
		return nil, err
	}

	etfs := make([]model.ETF, 0, manifest.RecordCount)
	for _, file := range manifest.SegmentFiles() {
		if file == "" || filepath.Base(file) != file {
			return nil, fmt.Errorf("manifest references unsafe segment name %q", file)
		}
		payload, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("read segment %s: %w", file, err)
		}
		part, err := decodeSegment(payload, manifest.Format)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", file, err)
		}
		etfs = append(etfs, part...)
	}

	s.logger.Debug().
		Str("collection", manifest.Collection).
		Str("kind", manifest.Kind).
		Int("records", len(etfs)).
		Msg("dataset loaded")

	return etfs, nil
}

// Manifest reads dataset metadata without decoding any records. It returns
// (nil, nil) when the dataset has never been written.
func (s *Store) Manifest(collection, kind string) (*Manifest, error) {
	col, err := SanitizeName(collection)
	if err != nil {
		return nil, err
	}
	knd, err := SanitizeName(kind)
	if err != nil {
		return nil, err
	}

	dir, err := s.datasetDir(col)
	if err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(filepath.Join(dir, manifestName(knd)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(payload, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &manifest, nil
}

// datasetDir joins the collection onto the store root, refusing any result
// that would escape it. SanitizeName already blocks traversal characters;
// this is the second line of defence.
func (s *Store) datasetDir(collection string) (string, error) {
	dir := filepath.Join(s.root, collection)
	rel, err := filepath.Rel(s.root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes store root", ErrInvalidName, collection)
	}
	return dir, nil
}

func (s *Store) writeManifest(dir, kind string, manifest *Manifest) error {
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return writeFileAtomic(dir, manifestName(kind), payload)
}

// purgeStale removes segment files of this kind that the freshly written
// manifest does not reference, e.g. leftover parts from a larger previous
// run or segments in the other format. Best effort: the save already
// committed.
func (s *Store) purgeStale(dir, kind string, manifest *Manifest) {
	keep := map[string]bool{manifestName(kind): true}
	for _, file := range manifest.SegmentFiles() {
		keep[file] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", dir).Msg("cannot scan for stale segments")
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || keep[name] {
			continue
		}
		if !strings.HasPrefix(name, kind+".") && !strings.HasPrefix(name, kind+"_part") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("cannot remove stale segment")
			continue
		}
		s.logger.Debug().Str("file", name).Msg("stale segment removed")
	}
}

// writeFileAtomic writes payload to a temp file in dir and renames it into
// place, so readers never observe a partially written file.
func writeFileAtomic(dir, name string, payload []byte) error {
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

var _ DatasetStore = (*Store)(nil)
