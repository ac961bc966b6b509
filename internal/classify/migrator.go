package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/patterns"
	"github.com/yfgao/invoice-extract/internal/pdftext"
)

// StagingDirName is the per-batch staging root created inside the source
// folder during phase 1.
const StagingDirName = "temp_output"

// DefaultOutputDir is the persistent output tree accumulating merged
// categorized files across runs.
const DefaultOutputDir = "output"

// Migrator classifies a folder of PDFs and performs the two-phase
// stage-then-merge migration. A single migrator instance must own a given
// source/output pair: concurrent migrators racing on the same output root
// can collide on the existence-check-then-rename steps in MergeToOutput.
type Migrator struct {
	reader    pdftext.Reader
	outputDir string
	logger    *zap.Logger
}

// NewMigrator creates a new batch migrator. An empty outputDir selects
// DefaultOutputDir relative to the working directory.
func NewMigrator(reader pdftext.Reader, outputDir string, logger *zap.Logger) *Migrator {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return &Migrator{
		reader:    reader,
		outputDir: outputDir,
		logger:    logger,
	}
}

// OutputDir returns the persistent output root this migrator merges into.
func (m *Migrator) OutputDir() string {
	return m.outputDir
}

// ClassifyBatch stages every .pdf directly under sourceFolder into
// per-category subfolders of a staging root, which it returns. Every
// category folder is created up front, so a crash mid-batch leaves a
// self-describing, re-mergeable tree. Per-file failures are logged and the
// file is left in place; only an invalid source folder fails the batch.
func (m *Migrator) ClassifyBatch(sourceFolder string) (string, error) {
	info, err := os.Stat(sourceFolder)
	if err != nil {
		return "", fmt.Errorf("invalid source folder: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source path is not a directory: %s", sourceFolder)
	}

	staging := filepath.Join(sourceFolder, StagingDirName)
	for _, name := range patterns.CategoryNames() {
		if err := os.MkdirAll(filepath.Join(staging, name), 0755); err != nil {
			return "", fmt.Errorf("failed to create staging folder: %w", err)
		}
	}

	entries, err := os.ReadDir(sourceFolder)
	if err != nil {
		return "", fmt.Errorf("failed to read source folder: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		srcPath := filepath.Join(sourceFolder, entry.Name())
		text, err := m.reader.AllPagesText(srcPath)
		if err != nil {
			m.logger.Warn("Skipping unreadable PDF",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}

		category := Classify(text)
		dstPath := filepath.Join(staging, category, entry.Name())
		if err := os.Rename(srcPath, dstPath); err != nil {
			m.logger.Warn("Failed to stage classified file",
				zap.String("file", entry.Name()),
				zap.String("category", category),
				zap.Error(err))
			continue
		}

		m.logger.Info("Classified invoice",
			zap.String("file", entry.Name()),
			zap.String("category", category))
	}

	return staging, nil
}

// MergeToOutput merges a staged tree into the persistent output root and
// removes the staging root. Category folders absent from the output are
// renamed whole; existing ones are merged file by file. Merging an
// already-merged (removed) staging root is a no-op. I/O errors during the
// merge propagate to the caller; a failure partway through a category can
// leave it partially merged with no rollback.
func (m *Migrator) MergeToOutput(stagingFolder string) error {
	if _, err := os.Stat(stagingFolder); os.IsNotExist(err) {
		return nil
	}

	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	entries, err := os.ReadDir(stagingFolder)
	if err != nil {
		return fmt.Errorf("failed to read staging folder: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		src := filepath.Join(stagingFolder, entry.Name())
		dst := filepath.Join(m.outputDir, entry.Name())

		if _, err := os.Stat(dst); os.IsNotExist(err) {
			if err := os.Rename(src, dst); err != nil {
				return fmt.Errorf("failed to move category folder %s: %w", entry.Name(), err)
			}
			continue
		}

		files, err := os.ReadDir(src)
		if err != nil {
			return fmt.Errorf("failed to read staged category %s: %w", entry.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			if err := os.Rename(filepath.Join(src, f.Name()), filepath.Join(dst, f.Name())); err != nil {
				return fmt.Errorf("failed to move %s: %w", f.Name(), err)
			}
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("failed to remove staged category %s: %w", entry.Name(), err)
		}
	}

	if err := os.Remove(stagingFolder); err != nil {
		return fmt.Errorf("failed to remove staging folder: %w", err)
	}

	m.logger.Info("Staged categories merged into output",
		zap.String("staging", stagingFolder),
		zap.String("output", m.outputDir))

	return nil
}
