package port

// InputResolver expands command line patterns into the files to upload.
type InputResolver interface {
	Resolve(patterns []string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}
