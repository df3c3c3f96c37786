package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// PathResolver finds input files across a set of lookup directories.
type PathResolver struct {
	lookupDirs []string
}

// NewPathResolver creates a new PathResolver. With no lookup directories the
// current working directory is used.
func NewPathResolver(lookupDirs []string) *PathResolver {
	if len(lookupDirs) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			// This is unlikely to fail, but if it does, it's a critical error.
			panic(fmt.Sprintf("could not get current working directory: %v", err))
		}
		return &PathResolver{lookupDirs: []string{wd}}
	}

	absDirs := make([]string, 0, len(lookupDirs))
	for _, dir := range lookupDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		absDirs = append(absDirs, abs)
	}
	return &PathResolver{lookupDirs: absDirs}
}

// Resolve finds an absolute path for an existing file, or "" if it exists in
// none of the lookup directories. Absolute inputs are checked as-is.
func (r *PathResolver) Resolve(path string) string {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	for _, dir := range r.lookupDirs {
		absPath := filepath.Join(dir, path)
		if _, err := os.Stat(absPath); err == nil {
			return absPath
		}
	}
	return ""
}

// Pair is one source/target comparison unit. A one-sided pair (a file present
// in only one variant tree) has the other path empty.
type Pair struct {
	Rel        string
	SourcePath string
	TargetPath string
}

// DiscoverPairs walks two variant directories and pairs their files by
// relative path. Files present on only one side still yield a pair, so a
// wholly added or removed file is compared against an empty counterpart.
// An optional extension filter restricts which files are paired.
func DiscoverPairs(sourceDir, targetDir string, extensions []string) ([]Pair, error) {
	sourceFiles, err := listFiles(sourceDir, extensions)
	if err != nil {
		return nil, err
	}
	targetFiles, err := listFiles(targetDir, extensions)
	if err != nil {
		return nil, err
	}

	rels := make(map[string]struct{}, len(sourceFiles)+len(targetFiles))
	for rel := range sourceFiles {
		rels[rel] = struct{}{}
	}
	for rel := range targetFiles {
		rels[rel] = struct{}{}
	}

	pairs := make([]Pair, 0, len(rels))
	for rel := range rels {
		pairs = append(pairs, Pair{
			Rel:        rel,
			SourcePath: sourceFiles[rel],
			TargetPath: targetFiles[rel],
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Rel < pairs[j].Rel })
	return pairs, nil
}

func listFiles(root string, extensions []string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !hasAllowedExtension(path, extensions) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[rel] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

func hasAllowedExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, allowedExt := range extensions {
		if ext == allowedExt {
			return true
		}
	}
	return false
}
