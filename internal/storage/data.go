package storage

// Persistence

// WriteResult reports where a mirrored file landed on disk.
type WriteResult struct {
	relPath  string
	fullPath string
	size     int
}

func NewWriteResult(
	relPath string,
	fullPath string,
	size int,
) WriteResult {
	return WriteResult{
		relPath:  relPath,
		fullPath: fullPath,
		size:     size,
	}
}

func (w *WriteResult) RelPath() string {
	return w.relPath
}

func (w *WriteResult) FullPath() string {
	return w.fullPath
}

func (w *WriteResult) Size() int {
	return w.size
}
