package dashboard

import (
	"context"

	"github.com/Sternrassler/marvel-extractor/pkg/transform"
)

// CSVSource reads character rows from a CSV file on every reload.
type CSVSource struct {
	Path string
}

// Rows implements Source.
func (s CSVSource) Rows(ctx context.Context) ([]transform.CharacterRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return transform.ReadCSVFile(s.Path)
}

// StoreSource reads character rows from Postgres on every reload.
type StoreSource struct {
	Store *transform.Store
}

// Rows implements Source.
func (s StoreSource) Rows(ctx context.Context) ([]transform.CharacterRow, error) {
	return s.Store.TopByComics(ctx, 0)
}
