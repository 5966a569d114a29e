// Package scan enumerates candidate transcript files.
package scan

import (
	"os"
	"path/filepath"
	"strings"
)

// FileInfo describes one candidate transcript file.
type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// Transcripts lists *.jsonl files under root. Non-recursive mode reads only
// the top level. Unreadable subdirectories are skipped, not fatal.
func Transcripts(root string, recursive bool) ([]FileInfo, error) {
	if !recursive {
		return scanFlat(root)
	}

	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() {
			if filepath.Base(path) == "subagents" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isTranscript(path) {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	return files, err
}

// Roots scans several roots, skipping ones that do not exist.
func Roots(roots []string) ([]FileInfo, error) {
	var files []FileInfo
	for _, root := range roots {
		rf, err := Transcripts(root, true)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		files = append(files, rf...)
	}
	return files, nil
}

func scanFlat(root string) ([]FileInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		if !isTranscript(path) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
	}
	return files, nil
}

// isTranscript filters out index sidecars that live next to session files.
func isTranscript(path string) bool {
	if filepath.Ext(path) != ".jsonl" {
		return false
	}
	return !strings.Contains(filepath.Base(path), "sessions-index")
}
