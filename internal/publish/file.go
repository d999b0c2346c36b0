package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer copies the artifact to w, typically stdout.
type Writer struct {
	W io.Writer
}

func (s Writer) Name() string { return "writer" }

func (s Writer) Publish(_ context.Context, a Artifact) error {
	if _, err := s.W.Write(a.Data); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}

// File replaces Path atomically: the artifact is written to a temporary file
// in the same directory, synced, and renamed over the destination.
type File struct {
	Path string
}

func (s File) Name() string { return "file" }

func (s File) Publish(_ context.Context, a Artifact) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp artifact file: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)

	if _, err := f.Write(a.Data); err != nil {
		f.Close()
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing artifact file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing artifact file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting artifact permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("renaming artifact file: %w", err)
	}
	return nil
}
