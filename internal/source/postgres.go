package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/resilience"
)

// Postgres turns every row of a query into one document keyed by column
// name. Row order is document order, so the query should ORDER BY.
type Postgres struct {
	client  *postgres.Client
	query   string
	timeout time.Duration
}

func NewPostgres(client *postgres.Client, query string, timeout time.Duration) *Postgres {
	return &Postgres{client: client, query: query, timeout: timeout}
}

func (p *Postgres) Name() string {
	return "postgres"
}

func (p *Postgres) Load(ctx context.Context) ([]document.Document, error) {
	log := logger.WithComponent("source").With("source", p.Name())
	start := time.Now()
	var docs []document.Document
	err := resilience.WithTimeout(ctx, p.timeout, "loading documents", func(ctx context.Context) error {
		return p.client.InReadOnlyTx(ctx, func(tx *sql.Tx) error {
			rows, err := tx.QueryContext(ctx, p.query)
			if err != nil {
				return fmt.Errorf("querying documents: %w", err)
			}
			defer rows.Close()
			docs, err = scanDocuments(rows)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info("documents loaded", "documents", len(docs), "duration", time.Since(start))
	return docs, nil
}

func scanDocuments(rows *sql.Rows) ([]document.Document, error) {
	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading column types: %w", err)
	}
	names := make([]string, len(columns))
	types := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
		types[i] = c.DatabaseTypeName()
	}

	var docs []document.Document
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", len(docs), err)
		}
		doc, err := rowDocument(names, types, values)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(docs), err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return docs, nil
}

// rowDocument converts scanned column values to document fields. JSON and
// JSONB columns are embedded as-is; other byte columns become strings.
func rowDocument(names, types []string, values []any) (document.Document, error) {
	fields := make(map[string]document.Value, len(names))
	for i, name := range names {
		raw, err := columnJSON(types[i], values[i])
		if err != nil {
			return document.Document{}, fmt.Errorf("column %q: %w", name, err)
		}
		v, err := document.ParseValue(raw)
		if err != nil {
			return document.Document{}, fmt.Errorf("column %q: %w", name, err)
		}
		fields[name] = v
	}
	return document.New(fields), nil
}

func columnJSON(dbType string, value any) ([]byte, error) {
	if b, ok := value.([]byte); ok {
		switch strings.ToUpper(dbType) {
		case "JSON", "JSONB":
			return b, nil
		default:
			value = string(b)
		}
	}
	return json.Marshal(value)
}
