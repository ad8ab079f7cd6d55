package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	tmpSuffix  = ".tmp"
	prevSuffix = ".prev"
)

// staging writes every artifact to <name>.tmp in the output directory and
// renames them all only after the last one was written.
type staging struct {
	dir   string
	files []string // final names in write order
}

func newStaging(dir string) (*staging, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &staging{dir: dir}, nil
}

func (s *staging) tmpPath(name string) string {
	return filepath.Join(s.dir, name+tmpSuffix)
}

// write stages one artifact through a buffered writer
func (s *staging) write(name string, fn func(w io.Writer) error) error {
	path := s.tmpPath(name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	s.files = append(s.files, name)

	buf := bufio.NewWriter(file)
	if err := fn(buf); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := buf.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush %s: %w", name, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// stageFile registers a temp file produced by another writer
func (s *staging) stageFile(name string, fn func(tmpPath string) error) error {
	s.files = append(s.files, name)
	if err := fn(s.tmpPath(name)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// renameFile is swapped in tests to fail a publish step
var renameFile = os.Rename

// published is one final artifact replaced during commit
type published struct {
	dst    string
	backup string // previous version, empty when the artifact is new
}

// commit renames every staged file to its final name. The previous
// version of each artifact is kept as <name>.prev until all renames
// succeeded; on failure every replaced artifact is restored.
func (s *staging) commit() ([]string, error) {
	done := make([]published, 0, len(s.files))
	for _, name := range s.files {
		p := published{dst: filepath.Join(s.dir, name)}
		if _, err := os.Stat(p.dst); err == nil {
			p.backup = p.dst + prevSuffix
			if err := renameFile(p.dst, p.backup); err != nil {
				s.rollback(done)
				return nil, fmt.Errorf("keep previous %s: %w", name, err)
			}
		}
		if err := renameFile(s.tmpPath(name), p.dst); err != nil {
			s.rollback(append(done, p))
			return nil, fmt.Errorf("publish %s: %w", name, err)
		}
		done = append(done, p)
	}

	final := make([]string, 0, len(done))
	for _, p := range done {
		if p.backup != "" {
			os.Remove(p.backup)
		}
		final = append(final, p.dst)
	}
	return final, nil
}

// rollback restores replaced artifacts newest first and removes new ones
func (s *staging) rollback(done []published) {
	for i := len(done) - 1; i >= 0; i-- {
		p := done[i]
		if p.backup == "" {
			os.Remove(p.dst)
			continue
		}
		// 복구 실패 시 .prev 파일이 남는다
		_ = renameFile(p.backup, p.dst)
	}
}

// abort removes every staged temp file
func (s *staging) abort() {
	for _, name := range s.files {
		os.Remove(s.tmpPath(name))
	}
}
