package shared

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bulwark-sec/bulwark/pkg/shared/files"
)

// SupportedArchiveExtensions lists the archive formats accepted for upload.
var SupportedArchiveExtensions = []string{".zip", ".tar.gz", ".tgz", ".tar"}

// Archive is a local archive holding contract sources for the direct-upload flow.
type Archive struct {
	Path string
}

// Name returns the archive file name.
func (a Archive) Name() string {
	return filepath.Base(a.Path)
}

// ValidateArchive checks that the archive is an existing regular file with a supported extension.
func ValidateArchive(a Archive) error {
	if a.Path == "" {
		return fmt.Errorf("archive path is empty")
	}
	if !hasArchiveExtension(a.Path) {
		return fmt.Errorf("unsupported archive %q, expected one of %s", a.Name(), strings.Join(SupportedArchiveExtensions, ", "))
	}
	return files.ValidatePath(a.Path)
}

func hasArchiveExtension(p string) bool {
	lower := strings.ToLower(p)
	for _, ext := range SupportedArchiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
