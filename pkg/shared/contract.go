package shared

import (
	"fmt"
	"path"
	"strings"
)

// Languages assigned to discovered contract files.
const (
	LanguageRust     = "Rust (Solana/Near)"
	LanguageSolidity = "Solidity (EVM)"
	LanguageUnknown  = "Unknown"

	// LanguageRustPublic is the label used for files resolved from a public repository tree.
	LanguageRustPublic = "Rust"
)

// Contract source extensions.
const (
	ExtRust     = ".rs"
	ExtSolidity = ".sol"
)

// ContractFile is a single source file identified for static analysis.
type ContractFile struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Language string `json:"language"`
}

// NewContractFile builds a ContractFile, deriving the name and language from path.
func NewContractFile(filePath string, size int64) ContractFile {
	return ContractFile{
		Path:     filePath,
		Name:     FileName(filePath),
		Size:     size,
		Language: LanguageForPath(filePath),
	}
}

// FileName returns the last path segment, or the path itself when it has none.
func FileName(filePath string) string {
	name := path.Base(filePath)
	if name == "." || name == "/" || name == "" {
		return filePath
	}
	return name
}

// LanguageForPath derives the contract language from the file extension.
func LanguageForPath(filePath string) string {
	switch {
	case strings.HasSuffix(filePath, ExtRust):
		return LanguageRust
	case strings.HasSuffix(filePath, ExtSolidity):
		return LanguageSolidity
	default:
		return LanguageUnknown
	}
}

// IsContractPath reports whether filePath ends in one of exts.
func IsContractPath(filePath string, exts ...string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(filePath, ext) {
			return true
		}
	}
	return false
}

// Validate checks the ContractFile invariants: non-empty relative path and non-negative size.
func (f ContractFile) Validate() error {
	if f.Path == "" {
		return fmt.Errorf("contract file path is empty")
	}
	if strings.HasPrefix(f.Path, "/") {
		return fmt.Errorf("contract file path %q is not relative", f.Path)
	}
	if f.Size < 0 {
		return fmt.Errorf("contract file %q has negative size %d", f.Path, f.Size)
	}
	return nil
}

// ContractPaths returns the paths of files in order.
func ContractPaths(files []ContractFile) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

// ValidateSelection checks that selected is a non-empty, duplicate-free subset of the paths in files.
func ValidateSelection(files []ContractFile, selected []string) error {
	if len(selected) == 0 {
		return fmt.Errorf("no files selected")
	}

	known := make(map[string]struct{}, len(files))
	for _, f := range files {
		known[f.Path] = struct{}{}
	}

	seen := make(map[string]struct{}, len(selected))
	for _, p := range selected {
		if _, ok := known[p]; !ok {
			return fmt.Errorf("selected file %q was not discovered", p)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("selected file %q is listed more than once", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}
