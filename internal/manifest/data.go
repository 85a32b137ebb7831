package manifest

import "time"

// Manifest assembly

// FileRecord is one manifest row: a crawl-relative path paired with
// either its content digest or the failure that prevented one.
type FileRecord struct {
	path    string
	digest  string
	failure string
}

func NewFileRecord(path string, digest string) FileRecord {
	return FileRecord{
		path:   path,
		digest: digest,
	}
}

func NewFailedFileRecord(path string, failure string) FileRecord {
	return FileRecord{
		path:    path,
		failure: failure,
	}
}

func (r *FileRecord) Path() string {
	return r.path
}

func (r *FileRecord) Digest() string {
	return r.digest
}

func (r *FileRecord) Failure() string {
	return r.failure
}

func (r *FileRecord) Failed() bool {
	return r.failure != ""
}

// Summary aggregates one crawl run for reporting.
type Summary struct {
	totalFiles    uint64
	totalFailures uint64
	totalBytes    uint64
	duration      time.Duration
}

func (s *Summary) TotalFiles() uint64 {
	return s.totalFiles
}

func (s *Summary) TotalFailures() uint64 {
	return s.totalFailures
}

func (s *Summary) TotalBytes() uint64 {
	return s.totalBytes
}

func (s *Summary) Duration() time.Duration {
	return s.duration
}

// Manifest is the finished, ordered output of a crawl run.
type Manifest struct {
	algo    string
	records []FileRecord
	summary Summary
}

func (m *Manifest) Algo() string {
	return m.algo
}

func (m *Manifest) Records() []FileRecord {
	return m.records
}

func (m *Manifest) Summary() Summary {
	return m.summary
}
