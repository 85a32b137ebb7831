package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rohmanhakim/repo-manifest/internal/metadata"
	"github.com/rohmanhakim/repo-manifest/pkg/failure"
	"github.com/rohmanhakim/repo-manifest/pkg/fileutil"
)

/*
Responsibilities
- Mirror downloaded file bytes under the output directory
- Preserve the crawl-relative directory layout
- Refuse paths that would escape the output directory

Output Characteristics
- Stable directory layout (one file per manifest row)
- Idempotent writes
- Overwrite-safe reruns
*/

type Sink interface {
	Write(relPath string, content []byte) (WriteResult, failure.ClassifiedError)
}

// LocalSink mirrors files under a local output directory.
type LocalSink struct {
	metadataSink metadata.MetadataSink
	outputDir    string
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
	outputDir string,
) LocalSink {
	return LocalSink{
		metadataSink: metadataSink,
		outputDir:    outputDir,
	}
}

func (s *LocalSink) Write(relPath string, content []byte) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(s.outputDir, relPath, content)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrPath, relPath),
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactMirroredFile,
		writeResult.FullPath(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrPath, writeResult.RelPath()),
			metadata.NewAttr(metadata.AttrWritePath, writeResult.FullPath()),
			metadata.NewAttr(metadata.AttrField, strconv.Itoa(writeResult.Size())),
		},
	)
	return writeResult, nil
}

func write(outputDir string, relPath string, content []byte) (WriteResult, failure.ClassifiedError) {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if cleaned == "." || cleaned == ".." ||
		strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) ||
		filepath.IsAbs(cleaned) {
		return WriteResult{}, &StorageError{
			Message:   fmt.Sprintf("refusing to write %q outside %q", relPath, outputDir),
			Retryable: false,
			Cause:     ErrCausePathEscape,
			Path:      relPath,
		}
	}

	fullPath := filepath.Join(outputDir, cleaned)

	if err := fileutil.EnsureDir(filepath.Dir(fullPath)); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      filepath.Dir(fullPath),
		}
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	return NewWriteResult(relPath, fullPath, len(content)), nil
}

// NopSink discards writes. Used when no output directory is configured
// and for dry runs.
type NopSink struct{}

func (NopSink) Write(relPath string, content []byte) (WriteResult, failure.ClassifiedError) {
	return NewWriteResult(relPath, "", len(content)), nil
}
