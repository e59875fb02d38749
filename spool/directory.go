package spool

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	envelopeExt       = ".envelope"
	processingDirName = "__processing"
)

// SpoolDirectory performs synchronous filesystem operations against one
// isolated root. It holds no lock itself; callers serialize "list then act"
// sequences using Lock.
type SpoolDirectory struct {
	root string
}

// NewSpoolDirectory wraps root, the per-DSN isolated directory.
func NewSpoolDirectory(root string) *SpoolDirectory {
	return &SpoolDirectory{root: root}
}

// Root returns the isolated root directory.
func (d *SpoolDirectory) Root() string { return d.root }

func (d *SpoolDirectory) processingDir() string {
	return filepath.Join(d.root, processingDirName)
}

// spoolFileName formats the on-disk name for an envelope created at createdAt.
func spoolFileName(createdAt time.Time, envelope Envelope) string {
	return fmt.Sprintf("%d_%s_%d%s", createdAt.UTC().Unix(), envelope.EventID(), envelope.ContentHash(), envelopeExt)
}

// creationSecondOf extracts the unix_seconds field embedded in name. Birth
// time isn't portably readable across platforms, so the ordering key travels
// in the name instead; ties fall back to lexicographic name comparison,
// which is consistent within a single run.
func creationSecondOf(name string) (int64, bool) {
	idx := strings.IndexByte(name, '_')
	if idx < 0 {
		return 0, false
	}

	seconds, err := strconv.ParseInt(name[:idx], 10, 64)

	return seconds, err == nil
}

func (d *SpoolDirectory) listNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrStorage, dir, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), envelopeExt) {
			continue
		}

		names = append(names, entry.Name())
	}

	sort.Slice(names, func(i, j int) bool {
		si, oki := creationSecondOf(names[i])
		sj, okj := creationSecondOf(names[j])

		if oki && okj && si != sj {
			return si < sj
		}

		return names[i] < names[j]
	})

	return names, nil
}

// ListReady returns every *.envelope file directly under the root, ordered by
// creation time ascending with name as a tiebreaker. A missing root is not an
// error and yields an empty slice.
func (d *SpoolDirectory) ListReady() ([]string, error) {
	return d.listPaths(d.root)
}

// ListProcessing is ListReady's equivalent for __processing.
func (d *SpoolDirectory) ListProcessing() ([]string, error) {
	return d.listPaths(d.processingDir())
}

func (d *SpoolDirectory) listPaths(dir string) ([]string, error) {
	names, err := d.listNames(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}

	return paths, nil
}

// ReclaimProcessing moves every file under __processing back to the root,
// keeping its name. Used only at CachingTransport construction to recover
// files a prior process left in flight.
func (d *SpoolDirectory) ReclaimProcessing() error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("%w: create root: %w", ErrStorage, err)
	}

	names, err := d.listNames(d.processingDir())
	if err != nil {
		return err
	}

	for _, name := range names {
		src := filepath.Join(d.processingDir(), name)
		dst := filepath.Join(d.root, name)

		if err := os.Rename(src, dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: reclaim %s: %w", ErrStorage, name, err)
		}
	}

	return nil
}

// ClaimOldest moves the oldest ready file into __processing and returns its
// new path, or "" if the ready set is empty. Callers must hold Lock.
func (d *SpoolDirectory) ClaimOldest() (string, error) {
	names, err := d.listNames(d.root)
	if err != nil {
		return "", err
	}

	if len(names) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(d.processingDir(), 0o755); err != nil {
		return "", fmt.Errorf("%w: create processing dir: %w", ErrStorage, err)
	}

	oldest := names[0]
	src := filepath.Join(d.root, oldest)
	dst := filepath.Join(d.processingDir(), oldest)

	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("%w: claim %s: %w", ErrStorage, oldest, err)
	}

	return dst, nil
}

// EvictExcess deletes all but the newest keep files directly under the root
// and returns how many it deleted. keep <= 0 deletes everything. Files a
// concurrent actor already removed are tolerated silently.
func (d *SpoolDirectory) EvictExcess(keep int) (int, error) {
	names, err := d.listNames(d.root)
	if err != nil {
		return 0, err
	}

	if keep < 0 {
		keep = 0
	}

	if len(names) <= keep {
		return 0, nil
	}

	toDelete := names[:len(names)-keep]

	for _, name := range toDelete {
		path := filepath.Join(d.root, name)

		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: evict %s: %w", ErrStorage, name, err)
		}
	}

	return len(toDelete), nil
}

// Store writes envelope's serialized bytes to a new file under the root,
// named per the on-disk layout, fsyncing before close so a successful Store
// is durable against a subsequent crash. A same-second filename collision
// for an identical event id and content hash surfaces as ErrStorage rather
// than silently overwriting.
func (d *SpoolDirectory) Store(ctx context.Context, envelope Envelope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return "", fmt.Errorf("%w: create root: %w", ErrStorage, err)
	}

	data, err := envelope.Serialize()
	if err != nil {
		return "", fmt.Errorf("%w: serialize: %w", ErrStorage, err)
	}

	name := spoolFileName(time.Now(), envelope)
	path := filepath.Join(d.root, name)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrStorage, name, err)
	}

	if werr := writeSync(file, data); werr != nil {
		_ = file.Close()

		return "", fmt.Errorf("%w: write %s: %w", ErrStorage, name, werr)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", ErrStorage, name, err)
	}

	return path, nil
}

func writeSync(file *os.File, data []byte) error {
	if _, err := file.Write(data); err != nil {
		return err
	}

	return file.Sync()
}
