package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
	"github.com/spf13/afero"
)

const (
	DefaultRestoreAttempts = 3
	DefaultRestoreDelay    = 1 * time.Second
)

// FsInjector implements Injector on top of an afero filesystem, which is either
// the device root on the local system or an in-memory tree.
type FsInjector struct {
	fs      afero.Fs
	root    string
	restore util.Retry

	overrides []*MockOverride
	index     map[string]*MockOverride
}

func NewFsInjector(fs afero.Fs, restore util.Retry) *FsInjector {
	if restore.Attempts <= 0 {
		restore.Attempts = DefaultRestoreAttempts
	}
	return &FsInjector{
		fs:      fs,
		restore: restore,
		index:   map[string]*MockOverride{},
	}
}

// NewRootedFsInjector operates on the local filesystem below root.
// Link targets are kept verbatim, so links pointing outside of root
// (e.g. into /sys) are restored correctly.
func NewRootedFsInjector(root string, restore util.Retry) *FsInjector {
	injector := NewFsInjector(afero.NewOsFs(), restore)
	if root != "/" {
		injector.root = root
	}
	return injector
}

func (i *FsInjector) resolve(path string) string {
	if i.root == "" {
		return path
	}
	return filepath.Join(i.root, path)
}

func (i *FsInjector) Read(path string) (string, error) {
	data, err := afero.ReadFile(i.fs, i.resolve(path))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (i *FsInjector) Write(path string, value string) error {
	if err := i.record(path); err != nil {
		return err
	}
	// never write through a link, it points to a real hardware attribute
	symlink, err := i.isSymlink(path)
	if err != nil {
		return err
	}
	if symlink {
		if err := i.fs.Remove(i.resolve(path)); err != nil {
			return fmt.Errorf("unable to unlink %s: %w", path, err)
		}
	}
	return i.writeFile(path, value, 0644)
}

func (i *FsInjector) UnlinkAndStub(path string) error {
	if err := i.record(path); err != nil {
		return err
	}
	symlink, err := i.isSymlink(path)
	if err != nil || !symlink {
		return err
	}
	// keep the current value visible through the placeholder
	value, err := i.Read(path)
	if err != nil {
		value = ""
	}
	if err := i.fs.Remove(i.resolve(path)); err != nil {
		return fmt.Errorf("unable to unlink %s: %w", path, err)
	}
	return i.writeFile(path, value, 0644)
}

func (i *FsInjector) Remove(path string) error {
	if err := i.record(path); err != nil {
		return err
	}
	err := i.fs.Remove(i.resolve(path))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Overrides returns the currently recorded original states, in first touch order
func (i *FsInjector) Overrides() []MockOverride {
	result := make([]MockOverride, 0, len(i.overrides))
	for _, o := range i.overrides {
		result = append(result, *o)
	}
	return result
}

func (i *FsInjector) RestoreAll() error {
	pending := i.overrides
	var lastErr error

	attempts, err := i.restore.Until(context.Background(), func(attempt int) (bool, error) {
		var failed []*MockOverride
		for _, o := range pending {
			if err := i.restoreOne(o); err != nil {
				ui.Warning("Attempt %d: unable to restore %s: %v", attempt, o.Path, err)
				lastErr = err
				failed = append(failed, o)
			}
		}
		pending = failed
		return len(pending) == 0, nil
	})

	i.overrides = pending
	i.index = map[string]*MockOverride{}
	for _, o := range pending {
		i.index[o.Path] = o
	}

	if err == nil {
		return nil
	}

	var paths []string
	for _, o := range pending {
		paths = append(paths, o.Path)
	}
	sort.Strings(paths)
	if lastErr == nil {
		lastErr = err
	}
	return &RestoreError{Paths: paths, Attempts: attempts, Err: lastErr}
}

func (i *FsInjector) restoreOne(o *MockOverride) error {
	switch o.Kind {
	case KindRegular:
		symlink, err := i.isSymlink(o.Path)
		if err != nil {
			return err
		}
		if symlink {
			if err := i.fs.Remove(i.resolve(o.Path)); err != nil {
				return err
			}
		}
		return i.writeFile(o.Path, o.Original, 0644)
	case KindSymlink:
		linker, ok := i.fs.(afero.Linker)
		if !ok {
			return fmt.Errorf("filesystem does not support symlinks")
		}
		if err := i.fs.Remove(i.resolve(o.Path)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return linker.SymlinkIfPossible(o.Original, i.resolve(o.Path))
	default:
		if err := i.fs.Remove(i.resolve(o.Path)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
}

func (i *FsInjector) record(path string) error {
	if _, ok := i.index[path]; ok {
		return nil
	}

	override := &MockOverride{Path: path, Kind: KindAbsent}
	info, err := i.lstat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("unable to inspect %s: %w", path, err)
	case info.Mode()&os.ModeSymlink != 0:
		reader, ok := i.fs.(afero.LinkReader)
		if !ok {
			return fmt.Errorf("unable to read link %s: filesystem does not support symlinks", path)
		}
		target, err := reader.ReadlinkIfPossible(i.resolve(path))
		if err != nil {
			return fmt.Errorf("unable to read link %s: %w", path, err)
		}
		override.Kind = KindSymlink
		override.Original = target
	default:
		data, err := afero.ReadFile(i.fs, i.resolve(path))
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", path, err)
		}
		override.Kind = KindRegular
		override.Original = string(data)
	}

	ui.Debug("Recorded original state of %s (%s)", path, override.Kind)
	i.overrides = append(i.overrides, override)
	i.index[path] = override
	return nil
}

func (i *FsInjector) lstat(path string) (os.FileInfo, error) {
	path = i.resolve(path)
	if lstater, ok := i.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err
	}
	return i.fs.Stat(path)
}

func (i *FsInjector) isSymlink(path string) (bool, error) {
	info, err := i.lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

func (i *FsInjector) writeFile(path string, value string, perm os.FileMode) error {
	path = i.resolve(path)
	if err := i.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return afero.WriteFile(i.fs, path, []byte(value), perm)
}
