package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/patterns"
)

// plainTextReader treats test fixture files as their own text layer.
type plainTextReader struct{}

func (plainTextReader) FirstPageText(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

func (plainTextReader) AllPagesText(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

// failingReader errors for every document.
type failingReader struct{}

func (failingReader) FirstPageText(path string) (string, error) {
	return "", fmt.Errorf("failed to open PDF: %s", path)
}

func (failingReader) AllPagesText(path string) (string, error) {
	return "", fmt.Errorf("failed to open PDF: %s", path)
}

func newTestMigrator(t *testing.T, outputDir string) *Migrator {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return NewMigrator(plainTextReader{}, outputDir, logger)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestClassifyBatch(t *testing.T) {
	t.Run("creates every category folder up front", func(t *testing.T) {
		source := t.TempDir()
		m := newTestMigrator(t, filepath.Join(t.TempDir(), "output"))

		staging, err := m.ClassifyBatch(source)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(source, StagingDirName), staging)
		for _, name := range patterns.CategoryNames() {
			assert.DirExists(t, filepath.Join(staging, name))
		}
	})

	t.Run("stages files into their categories", func(t *testing.T) {
		source := t.TempDir()
		writeFile(t, filepath.Join(source, "didi.pdf"), "滴滴出行 快车")
		writeFile(t, filepath.Join(source, "hotel.pdf"), "某某酒店 住宿服务")
		writeFile(t, filepath.Join(source, "misc.pdf"), "无关内容")
		m := newTestMigrator(t, filepath.Join(t.TempDir(), "output"))

		staging, err := m.ClassifyBatch(source)

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(staging, "滴滴打车发票", "didi.pdf"))
		assert.FileExists(t, filepath.Join(staging, "住宿发票", "hotel.pdf"))
		assert.FileExists(t, filepath.Join(staging, "其他发票", "misc.pdf"))
		assert.NoFileExists(t, filepath.Join(source, "didi.pdf"))
	})

	t.Run("extension match is case-insensitive and non-pdf files stay", func(t *testing.T) {
		source := t.TempDir()
		writeFile(t, filepath.Join(source, "UPPER.PDF"), "滴滴 专车")
		writeFile(t, filepath.Join(source, "notes.txt"), "滴滴")
		m := newTestMigrator(t, filepath.Join(t.TempDir(), "output"))

		staging, err := m.ClassifyBatch(source)

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(staging, "滴滴打车发票", "UPPER.PDF"))
		assert.FileExists(t, filepath.Join(source, "notes.txt"))
	})

	t.Run("unreadable files are skipped in place", func(t *testing.T) {
		source := t.TempDir()
		writeFile(t, filepath.Join(source, "broken.pdf"), "whatever")
		logger, _ := zap.NewDevelopment()
		m := NewMigrator(failingReader{}, filepath.Join(t.TempDir(), "output"), logger)

		staging, err := m.ClassifyBatch(source)

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(source, "broken.pdf"))
		assert.NoFileExists(t, filepath.Join(staging, "其他发票", "broken.pdf"))
	})

	t.Run("invalid source folder fails the batch", func(t *testing.T) {
		m := newTestMigrator(t, filepath.Join(t.TempDir(), "output"))

		_, err := m.ClassifyBatch(filepath.Join(t.TempDir(), "does-not-exist"))

		assert.Error(t, err)
	})
}

func TestMergeToOutput(t *testing.T) {
	t.Run("moves whole category folders into a fresh output", func(t *testing.T) {
		source := t.TempDir()
		writeFile(t, filepath.Join(source, "didi.pdf"), "滴滴 快车")
		output := filepath.Join(t.TempDir(), "output")
		m := newTestMigrator(t, output)

		staging, err := m.ClassifyBatch(source)
		require.NoError(t, err)
		require.NoError(t, m.MergeToOutput(staging))

		assert.FileExists(t, filepath.Join(output, "滴滴打车发票", "didi.pdf"))
		assert.NoDirExists(t, staging)
	})

	t.Run("merges into existing category folders without losing files", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "output")
		require.NoError(t, os.MkdirAll(filepath.Join(output, "滴滴打车发票"), 0755))
		writeFile(t, filepath.Join(output, "滴滴打车发票", "old.pdf"), "previous run")

		source := t.TempDir()
		writeFile(t, filepath.Join(source, "new.pdf"), "滴滴 快车")
		m := newTestMigrator(t, output)

		staging, err := m.ClassifyBatch(source)
		require.NoError(t, err)
		require.NoError(t, m.MergeToOutput(staging))

		assert.FileExists(t, filepath.Join(output, "滴滴打车发票", "old.pdf"))
		assert.FileExists(t, filepath.Join(output, "滴滴打车发票", "new.pdf"))
		assert.NoDirExists(t, staging)
	})

	t.Run("merging an already-merged staging root is a no-op", func(t *testing.T) {
		source := t.TempDir()
		writeFile(t, filepath.Join(source, "didi.pdf"), "滴滴 快车")
		output := filepath.Join(t.TempDir(), "output")
		m := newTestMigrator(t, output)

		staging, err := m.ClassifyBatch(source)
		require.NoError(t, err)
		require.NoError(t, m.MergeToOutput(staging))
		require.NoError(t, m.MergeToOutput(staging))

		entries, err := os.ReadDir(filepath.Join(output, "滴滴打车发票"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestBatchMigration_EndToEnd(t *testing.T) {
	// One PDF mentioning 滴滴 and 快车, with no recognizable invoice
	// fields, ends up as exactly one file under the didi category.
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "trip.pdf"), "行程报告 滴滴 快车 无其他信息")
	output := filepath.Join(t.TempDir(), "output")
	m := newTestMigrator(t, output)

	staging, err := m.ClassifyBatch(source)
	require.NoError(t, err)

	staged, err := os.ReadDir(filepath.Join(staging, "滴滴打车发票"))
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, "trip.pdf", staged[0].Name())

	require.NoError(t, m.MergeToOutput(staging))

	merged, err := os.ReadDir(filepath.Join(output, "滴滴打车发票"))
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "trip.pdf", merged[0].Name())
	assert.NoDirExists(t, staging)
}
