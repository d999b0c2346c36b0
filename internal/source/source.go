// Package source loads the document corpus for a build, either from a JSON
// file or from a Postgres query.
package source

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
)

// Source produces the complete, ordered document sequence for one build.
type Source interface {
	Load(ctx context.Context) ([]document.Document, error)
	Name() string
}

// File reads a JSON array of documents from disk.
type File struct {
	Path string
}

func (f File) Load(ctx context.Context) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return document.ReadFile(f.Path)
}

func (f File) Name() string {
	return "file:" + f.Path
}
