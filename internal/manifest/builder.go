package manifest

import (
	"sort"
	"time"
)

/*
Builder Responsibilities
- Accumulate per-file outcomes as the crawl progresses
- Produce a deterministic manifest: rows sorted lexicographically by path
- Track run totals for the final summary

The builder is owned by the crawl coordinator and is not safe for
concurrent use. Records arrive in completion order, which varies between
runs; Build imposes the canonical ordering so that the same site graph
always yields byte-identical output.
*/

type Builder struct {
	algo      string
	startedAt time.Time
	records   []FileRecord
	bytes     uint64
	failures  uint64
}

// NewBuilder starts a manifest for one crawl run. algo names the digest
// column in the produced manifest.
func NewBuilder(algo string) *Builder {
	return &Builder{
		algo:      algo,
		startedAt: time.Now(),
	}
}

// AddSuccess records a digested file and its transferred size.
func (b *Builder) AddSuccess(path string, digest string, sizeBytes uint64) {
	b.records = append(b.records, NewFileRecord(path, digest))
	b.bytes += sizeBytes
}

// AddFailure records a file that could not be digested, with the reason.
func (b *Builder) AddFailure(path string, failure string) {
	b.records = append(b.records, NewFailedFileRecord(path, failure))
	b.failures++
}

// Len returns the number of records accumulated so far.
func (b *Builder) Len() int {
	return len(b.records)
}

// SucceededCount returns the number of successfully digested files so far.
func (b *Builder) SucceededCount() uint64 {
	return uint64(len(b.records)) - b.failures
}

// Build finalizes the manifest. Records are sorted by path; two distinct
// URLs mapping to the same relative path keep their insertion order.
func (b *Builder) Build() Manifest {
	records := make([]FileRecord, len(b.records))
	copy(records, b.records)

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].path < records[j].path
	})

	return Manifest{
		algo:    b.algo,
		records: records,
		summary: Summary{
			totalFiles:    uint64(len(records)) - b.failures,
			totalFailures: b.failures,
			totalBytes:    b.bytes,
			duration:      time.Since(b.startedAt),
		},
	}
}
