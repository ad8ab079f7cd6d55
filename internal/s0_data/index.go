package s0_data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supported extensions in preference order
var dataExtensions = []string{".csv", ".txt"}

// FileIndex maps upper-case symbols to OHLCV file paths
type FileIndex struct {
	dir   string
	files map[string]string
}

// IndexDir scans dir once and indexes every .csv/.txt file by symbol.
// Matching is case-insensitive; .csv wins over .txt, then the
// lexically smallest file name wins.
func IndexDir(dir string) (*FileIndex, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	idx := &FileIndex{dir: dir, files: make(map[string]string)}
	rank := make(map[string]int)
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		pref := extensionRank(ext)
		if pref < 0 {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(strings.TrimSuffix(name, filepath.Ext(name))))
		if symbol == "" {
			continue
		}
		if cur, ok := rank[symbol]; ok && cur <= pref {
			continue
		}
		rank[symbol] = pref
		idx.files[symbol] = filepath.Join(dir, name)
	}

	return idx, nil
}

func extensionRank(ext string) int {
	for i, e := range dataExtensions {
		if e == ext {
			return i
		}
	}
	return -1
}

// Lookup returns the file path for a symbol
func (i *FileIndex) Lookup(symbol string) (string, bool) {
	path, ok := i.files[strings.ToUpper(strings.TrimSpace(symbol))]
	return path, ok
}

// Len returns the number of indexed symbols
func (i *FileIndex) Len() int {
	return len(i.files)
}

// Symbols returns indexed symbols in ascending order
func (i *FileIndex) Symbols() []string {
	out := make([]string, 0, len(i.files))
	for s := range i.files {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// FindFile locates the OHLCV file of one symbol in dir
func FindFile(dir, symbol string) (string, error) {
	idx, err := IndexDir(dir)
	if err != nil {
		return "", &DataError{Symbol: symbol, Path: dir, Kind: KindMissingFile, Err: err}
	}
	path, ok := idx.Lookup(symbol)
	if !ok {
		return "", &DataError{
			Symbol: symbol,
			Path:   filepath.Join(dir, symbol+".csv"),
			Kind:   KindMissingFile,
			Err:    fmt.Errorf("no %s file for symbol", strings.Join(dataExtensions, "/")),
		}
	}
	return path, nil
}
