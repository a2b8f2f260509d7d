package store

import (
	"fmt"
	"time"
)

// Format selects the serialization of dataset segments.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

func (f Format) validate() error {
	switch f {
	case FormatJSON, FormatMsgpack:
		return nil
	default:
		return fmt.Errorf("unsupported format %q", string(f))
	}
}

// ext is the file extension used for segments in this format.
func (f Format) ext() string {
	return string(f)
}

// ChunkInfo describes one segment of a chunked dataset.
type ChunkInfo struct {
	File  string `json:"file"`
	Count int    `json:"count"`
	Bytes int    `json:"bytes"`
}

// Manifest records how a dataset is laid out on disk. It is written after
// all segments, so a manifest never references files that do not exist yet.
type Manifest struct {
	Collection  string      `json:"collection"`
	Kind        string      `json:"kind"`
	UpdatedAt   time.Time   `json:"updated_at"`
	RecordCount int         `json:"record_count"`
	TotalBytes  int         `json:"total_bytes"`
	Format      Format      `json:"format"`
	Chunked     bool        `json:"chunked"`
	ChunkCount  int         `json:"chunk_count,omitempty"`
	Chunks      []ChunkInfo `json:"chunks,omitempty"`
	File        string      `json:"file,omitempty"`
}

// SegmentFiles lists the segment file names in read order.
func (m *Manifest) SegmentFiles() []string {
	if !m.Chunked {
		return []string{m.File}
	}
	files := make([]string, 0, len(m.Chunks))
	for _, chunk := range m.Chunks {
		files = append(files, chunk.File)
	}
	return files
}

func manifestName(kind string) string {
	return kind + "_metadata.json"
}
