package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/codeindex/internal/indexer/ierr"
)

// DescribeFile builds the FileDescriptor for one file under root, hashing
// its current on-disk content. Used both by a full scan and by the
// watcher's incremental hint path.
func DescribeFile(root, absPath string) (FileDescriptor, error) {
	relPath, err := filepath.Rel(root, absPath)
	if err != nil {
		return FileDescriptor{}, ierr.New(ierr.IOError, absPath, err)
	}
	relPath = filepath.ToSlash(relPath)

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return FileDescriptor{}, ierr.New(ierr.IOError, relPath, err)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(absPath), "."))

	return FileDescriptor{
		AbsPath:     absPath,
		RelPath:     relPath,
		Ext:         ext,
		ContentHash: hashBytes(raw),
	}, nil
}

// ScanWorkspace walks every file discovery reports (code and docs) and
// builds a relPath -> contentHash map, the "disk scan result S" the
// manifest diffs against.
func ScanWorkspace(root string, discovery *FileDiscovery) (map[string]string, error) {
	codeFiles, docFiles, err := discovery.DiscoverFiles()
	if err != nil {
		return nil, ierr.New(ierr.IOError, root, err)
	}

	scan := make(map[string]string, len(codeFiles)+len(docFiles))
	for _, abs := range append(codeFiles, docFiles...) {
		fd, err := DescribeFile(root, abs)
		if err != nil {
			continue // unreadable file: treated as absent from S, like a deletion
		}
		scan[fd.RelPath] = fd.ContentHash
	}
	return scan, nil
}
