package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// rotatedTimeFormat is the suffix of rotated files: quietctl-20261017-142233.log.
// A second rotation within the same second adds a sequence number:
// quietctl-20261017-142233_1.log.
const rotatedTimeFormat = "20060102-150405"

// FileRotator is an io.Writer over a log file that is renamed aside once it
// would grow past MaxSizeMB. All work, including compression and pruning of
// old files, happens inside Write so nothing outlives a short-lived process.
type FileRotator struct {
	path       string
	maxBytes   int64
	maxBackups int
	compress   bool

	mu   sync.Mutex
	file *os.File
	size int64
	now  func() time.Time
}

// NewFileRotator opens cfg.FilePath for appending.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	r := &FileRotator{
		path:       cfg.FilePath,
		maxBytes:   int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxBackups: cfg.MaxBackups,
		compress:   cfg.Compress,
		now:        time.Now,
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file = f
	r.size = info.Size()
	return nil
}

// Write implements io.Writer.
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	// A record larger than the limit is still written, to a fresh file.
	if r.maxBytes > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxBytes {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close current log: %w", err)
	}
	r.file = nil

	rotated := r.rotatedName(r.now())
	if err := os.Rename(r.path, rotated); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}
	if r.compress {
		if err := compressFile(rotated); err != nil {
			return err
		}
	}
	if err := r.open(); err != nil {
		return err
	}
	return r.prune()
}

// rotatedName returns the first backup name for t that is not taken by a
// plain or compressed backup.
func (r *FileRotator) rotatedName(t time.Time) string {
	name, ext := r.split()
	stem := filepath.Join(filepath.Dir(r.path), name+"-"+t.Format(rotatedTimeFormat))
	candidate := stem + ext
	for seq := 1; exists(candidate) || exists(candidate+".gz"); seq++ {
		candidate = stem + "_" + strconv.Itoa(seq) + ext
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (r *FileRotator) split() (name, ext string) {
	base := filepath.Base(r.path)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

func compressFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	gz.Name = filepath.Base(path)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		os.Remove(path + ".gz")
		return fmt.Errorf("compress %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		out.Close()
		os.Remove(path + ".gz")
		return fmt.Errorf("compress %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	in.Close()
	return os.Remove(path)
}

// prune keeps the newest maxBackups rotated files. Zero keeps all.
func (r *FileRotator) prune() error {
	if r.maxBackups <= 0 {
		return nil
	}
	files, err := r.backups()
	if err != nil {
		return err
	}
	for i := 0; i < len(files)-r.maxBackups; i++ {
		if err := os.Remove(files[i]); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// backups returns rotated files, oldest first: by timestamp, then sequence.
func (r *FileRotator) backups() ([]string, error) {
	name, ext := r.split()
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(r.path), name+"-*"+ext+"*"))
	if err != nil {
		return nil, err
	}
	type key struct {
		stamp string
		seq   int
	}
	keys := make(map[string]key, len(matches))
	for _, m := range matches {
		rest := strings.TrimPrefix(filepath.Base(m), name+"-")
		rest = strings.TrimSuffix(strings.TrimSuffix(rest, ".gz"), ext)
		stamp, seq, _ := strings.Cut(rest, "_")
		n, _ := strconv.Atoi(seq)
		keys[m] = key{stamp, n}
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := keys[matches[i]], keys[matches[j]]
		if a.stamp != b.stamp {
			return a.stamp < b.stamp
		}
		return a.seq < b.seq
	})
	return matches, nil
}

// Files returns the active log file followed by rotated ones, oldest first.
func (r *FileRotator) Files() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	backups, err := r.backups()
	return append([]string{r.path}, backups...), err
}

// Close closes the active file.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
