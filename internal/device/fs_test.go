package device

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/markusressel/tcoracle/internal/util"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingFs struct {
	afero.Fs
	armed    bool
	failing  map[string]bool
	attempts map[string]int
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.armed && f.failing[name] {
		f.attempts[name]++
		return nil, errors.New("read-only file system")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func createInjector(fs afero.Fs) (*FsInjector, *sleepRecorder) {
	recorder := &sleepRecorder{}
	injector := NewFsInjector(fs, util.Retry{
		Attempts: DefaultRestoreAttempts,
		Delay:    DefaultRestoreDelay,
		Sleep:    recorder.sleep,
	})
	return injector, recorder
}

func TestFsInjector_WriteAndRestoreRegularFile(t *testing.T) {
	// GIVEN
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/thermal/asic", []byte("75000\n"), 0644))
	injector, _ := createInjector(fs)

	// WHEN
	require.NoError(t, injector.Write("/thermal/asic", "85000"))
	require.NoError(t, injector.Write("/thermal/asic", "95000"))

	// THEN
	value, err := injector.Read("/thermal/asic")
	require.NoError(t, err)
	assert.Equal(t, "95000", value)
	assert.Equal(t, []MockOverride{
		{Path: "/thermal/asic", Kind: KindRegular, Original: "75000\n"},
	}, injector.Overrides())

	// WHEN
	err = injector.RestoreAll()

	// THEN
	assert.NoError(t, err)
	data, err := afero.ReadFile(fs, "/thermal/asic")
	require.NoError(t, err)
	assert.Equal(t, "75000\n", string(data))
	assert.Empty(t, injector.Overrides())
}

func TestFsInjector_WriteAbsentPathIsRemovedOnRestore(t *testing.T) {
	// GIVEN
	fs := afero.NewMemMapFs()
	injector, _ := createInjector(fs)

	// WHEN
	require.NoError(t, injector.Write("/thermal/fan1_fault", "1"))
	require.NoError(t, injector.RestoreAll())

	// THEN
	exists, err := afero.Exists(fs, "/thermal/fan1_fault")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFsInjector_RemoveAndRestore(t *testing.T) {
	// GIVEN
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/thermal/module1_temp_input", []byte("45000"), 0644))
	injector, _ := createInjector(fs)

	// WHEN
	require.NoError(t, injector.Remove("/thermal/module1_temp_input"))
	_, readErr := injector.Read("/thermal/module1_temp_input")
	restoreErr := injector.RestoreAll()

	// THEN
	assert.ErrorIs(t, readErr, os.ErrNotExist)
	assert.NoError(t, restoreErr)
	value, err := injector.Read("/thermal/module1_temp_input")
	require.NoError(t, err)
	assert.Equal(t, "45000", value)
}

func TestFsInjector_RemoveMissingPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	injector, _ := createInjector(fs)

	assert.NoError(t, injector.Remove("/thermal/missing"))
	assert.NoError(t, injector.RestoreAll())
}

func TestFsInjector_RestoreAllIsIdempotent(t *testing.T) {
	// GIVEN
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/thermal/psu1_temp", []byte("40000"), 0644))
	injector, _ := createInjector(fs)
	require.NoError(t, injector.Write("/thermal/psu1_temp", "90000"))
	// somebody else removed the mocked file in the meantime
	require.NoError(t, fs.Remove("/thermal/psu1_temp"))

	// WHEN
	first := injector.RestoreAll()
	second := injector.RestoreAll()

	// THEN
	assert.NoError(t, first)
	assert.NoError(t, second)
	value, err := injector.Read("/thermal/psu1_temp")
	require.NoError(t, err)
	assert.Equal(t, "40000", value)
}

func TestFsInjector_RestoreAfterFailure(t *testing.T) {
	// GIVEN
	fs := &failingFs{
		Fs:       afero.NewMemMapFs(),
		failing:  map[string]bool{"/thermal/psu2_temp": true, "/thermal/asic": true},
		attempts: map[string]int{},
	}
	paths := []string{
		"/thermal/asic",
		"/thermal/cpu_pack",
		"/thermal/psu1_temp",
		"/thermal/psu2_temp",
		"/thermal/fan_amb",
	}
	for _, path := range paths {
		require.NoError(t, afero.WriteFile(fs, path, []byte("30000"), 0644))
	}
	injector, recorder := createInjector(fs)
	for _, path := range paths {
		require.NoError(t, injector.Write(path, "99000"))
	}
	fs.armed = true

	// WHEN
	err := injector.RestoreAll()

	// THEN
	var restoreErr *RestoreError
	require.True(t, errors.As(err, &restoreErr))
	assert.Equal(t, []string{"/thermal/asic", "/thermal/psu2_temp"}, restoreErr.Paths)
	assert.Equal(t, DefaultRestoreAttempts, restoreErr.Attempts)
	assert.Equal(t, 3, fs.attempts["/thermal/asic"])
	assert.Equal(t, 3, fs.attempts["/thermal/psu2_temp"])
	assert.Equal(t, []time.Duration{time.Second, time.Second}, recorder.calls)

	for _, path := range []string{"/thermal/cpu_pack", "/thermal/psu1_temp", "/thermal/fan_amb"} {
		value, err := injector.Read(path)
		require.NoError(t, err)
		assert.Equal(t, "30000", value, path)
	}
	// only the failed paths remain recorded
	assert.Len(t, injector.Overrides(), 2)

	// WHEN
	fs.armed = false
	err = injector.RestoreAll()

	// THEN
	assert.NoError(t, err)
	assert.Empty(t, injector.Overrides())
}

func TestFsInjector_Symlinks(t *testing.T) {
	// GIVEN
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sys"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "thermal"), 0755))
	target := filepath.Join(dir, "sys", "temp1_input")
	require.NoError(t, os.WriteFile(target, []byte("45000"), 0644))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "thermal", "asic")))

	injector := NewRootedFsInjector(dir, util.Retry{Attempts: 1})

	// WHEN
	require.NoError(t, injector.Write("/thermal/asic", "95000"))

	// THEN
	value, err := injector.Read("/thermal/asic")
	require.NoError(t, err)
	assert.Equal(t, "95000", value)
	original, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "45000", string(original))
	overrides := injector.Overrides()
	require.Len(t, overrides, 1)
	assert.Equal(t, KindSymlink, overrides[0].Kind)

	// WHEN
	require.NoError(t, injector.RestoreAll())

	// THEN
	info, err := os.Lstat(filepath.Join(dir, "thermal", "asic"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
	value, err = injector.Read("/thermal/asic")
	require.NoError(t, err)
	assert.Equal(t, "45000", value)
}

func TestFsInjector_UnlinkAndStub(t *testing.T) {
	// GIVEN
	dir := t.TempDir()
	target := filepath.Join(dir, "temp1_input")
	require.NoError(t, os.WriteFile(target, []byte("52000"), 0644))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "cpu_pack")))
	injector := NewRootedFsInjector(dir, util.Retry{Attempts: 1})

	// WHEN
	err := injector.UnlinkAndStub("/cpu_pack")

	// THEN
	require.NoError(t, err)
	info, err := os.Lstat(filepath.Join(dir, "cpu_pack"))
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink)
	value, err := injector.Read("/cpu_pack")
	require.NoError(t, err)
	assert.Equal(t, "52000", value)

	require.NoError(t, injector.RestoreAll())
	info, err = os.Lstat(filepath.Join(dir, "cpu_pack"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestNewRootedFsInjector(t *testing.T) {
	// GIVEN
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pwm1"), []byte("128\n"), 0644))

	// WHEN
	injector := NewRootedFsInjector(dir, util.Retry{})
	value, err := injector.Read("/pwm1")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, "128", value)
}
