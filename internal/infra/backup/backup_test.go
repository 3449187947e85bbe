package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
)

func newTestManager(t *testing.T, retention RetentionPolicy) (*Manager, *clock.Fake, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "backups")
	clk := clock.NewFake()
	m, err := NewManager(dir, retention, clk, zap.NewNop())
	require.NoError(t, err)
	return m, clk, dir
}

func TestSaveAndLoad(t *testing.T) {
	m, _, dir := newTestManager(t, RetentionPolicy{})

	data := []byte("boot0 snapshot")
	name, err := m.Save("boot0", data)
	require.NoError(t, err)
	assert.Equal(t, "boot0-20240101-000000.000.bin", name)
	assert.FileExists(t, filepath.Join(dir, name+ChecksumSuffix))

	got, err := m.Load(name)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	files, err := m.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, files[0].Verified)
	assert.Equal(t, int64(len(data)), files[0].Size)
}

func TestSaveSkipsDuplicate(t *testing.T) {
	m, clk, _ := newTestManager(t, RetentionPolicy{})

	_, err := m.Save("boot0", []byte("same"))
	require.NoError(t, err)
	clk.Advance(time.Second)

	name, err := m.Save("boot0", []byte("same"))
	require.NoError(t, err)
	assert.Empty(t, name)

	files, _ := m.List()
	assert.Len(t, files, 1)
}

func TestLoadDetectsTampering(t *testing.T) {
	m, _, dir := newTestManager(t, RetentionPolicy{})
	name, err := m.Save("boot0", []byte("original"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("modified"), FileMode))

	_, err = m.Load(name)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	files, _ := m.List()
	require.Len(t, files, 1)
	assert.False(t, files[0].Verified)
}

func TestLoadRejectsBadNames(t *testing.T) {
	m, _, _ := newTestManager(t, RetentionPolicy{})

	for _, name := range []string{"../config.yaml", "missing-20240101-000000.000.bin", "boot0.txt"} {
		_, err := m.Load(name)
		assert.ErrorIs(t, err, apperrors.ErrFileNotFound, name)
	}
}

func TestRetention(t *testing.T) {
	t.Run("最大文件數", func(t *testing.T) {
		m, clk, _ := newTestManager(t, RetentionPolicy{MaxFiles: 2})
		for i := range 4 {
			_, err := m.Save("boot0", []byte{byte(i)})
			require.NoError(t, err)
			clk.Advance(time.Second)
		}

		files, err := m.List()
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "boot0-20240101-000003.000.bin", files[0].Name, "保留最新的")
		assert.Equal(t, "boot0-20240101-000002.000.bin", files[1].Name)
	})

	t.Run("最長保留時間", func(t *testing.T) {
		m, clk, _ := newTestManager(t, RetentionPolicy{MaxAge: time.Hour})
		_, err := m.Save("boot0", []byte("old"))
		require.NoError(t, err)

		clk.Advance(2 * time.Hour)
		_, err = m.Save("boot0", []byte("new"))
		require.NoError(t, err)

		files, _ := m.List()
		require.Len(t, files, 1)
		assert.Equal(t, "boot0-20240101-020000.000.bin", files[0].Name)
	})
}

func TestListIgnoresForeignFiles(t *testing.T) {
	m, _, dir := newTestManager(t, RetentionPolicy{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.bin"), []byte("x"), FileMode))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.bin"), DirMode))

	files, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}
