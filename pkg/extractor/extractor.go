// Package extractor ties request signing and the paginated fetch loop into
// dataset-level retrieval sessions.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/marvel-extractor/pkg/auth"
)

// Dataset names accepted by Collection.
const (
	DatasetCharacters = "characters"
	DatasetComics     = "comics"
)

// Gateway endpoint paths.
const (
	EndpointCharacters = "/v1/public/characters"
	EndpointComics     = "/v1/public/comics"
)

var (
	// ErrUnknownDataset indicates a dataset name Collection cannot resolve.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrFetcherRequired indicates the session was built without a fetcher.
	ErrFetcherRequired = errors.New("fetcher is required")
)

// Fetcher walks one paginated collection. *pagination.Fetcher implements
// this interface.
type Fetcher interface {
	FetchAll(ctx context.Context, endpoint string, params *auth.Params, recordLimit int) ([]json.RawMessage, error)
}

// Session retrieves datasets from the gateway. Each retrieval signs its
// requests with parameters built once at the start of the session; only the
// offset changes between pages.
type Session struct {
	publicKey  string
	privateKey string
	fetcher    Fetcher
	logger     zerolog.Logger
}

// NewSession creates a Session with the given credentials.
func NewSession(publicKey, privateKey string, fetcher Fetcher) (*Session, error) {
	if publicKey == "" {
		return nil, auth.ErrMissingPublicKey
	}
	if privateKey == "" {
		return nil, auth.ErrMissingPrivateKey
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	return &Session{
		publicKey:  publicKey,
		privateKey: privateKey,
		fetcher:    fetcher,
		logger:     log.With().Str("component", "extractor").Logger(),
	}, nil
}

// Collection retrieves recordLimit records from the named dataset. A limit
// of zero retrieves the full collection.
func (s *Session) Collection(ctx context.Context, dataset string, recordLimit int) ([]json.RawMessage, error) {
	switch dataset {
	case DatasetCharacters:
		return s.Characters(ctx, recordLimit)
	case DatasetComics:
		return s.Comics(ctx, recordLimit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, dataset)
	}
}

// Characters retrieves records from the characters collection.
func (s *Session) Characters(ctx context.Context, recordLimit int) ([]json.RawMessage, error) {
	return s.fetch(ctx, DatasetCharacters, EndpointCharacters, recordLimit)
}

// Comics retrieves records from the comics collection.
func (s *Session) Comics(ctx context.Context, recordLimit int) ([]json.RawMessage, error) {
	return s.fetch(ctx, DatasetComics, EndpointComics, recordLimit)
}

// CharacterComics retrieves the comics a single character appears in.
func (s *Session) CharacterComics(ctx context.Context, characterID, recordLimit int) ([]json.RawMessage, error) {
	if characterID <= 0 {
		return nil, fmt.Errorf("character id must be positive, got %d", characterID)
	}

	endpoint := fmt.Sprintf("%s/%d/comics", EndpointCharacters, characterID)
	return s.fetch(ctx, "character-comics", endpoint, recordLimit)
}

func (s *Session) fetch(ctx context.Context, dataset, endpoint string, recordLimit int) ([]json.RawMessage, error) {
	params, err := auth.NewParams(s.publicKey, s.privateKey)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("dataset", dataset).
		Str("endpoint", endpoint).
		Int("record_limit", recordLimit).
		Msg("Starting extraction session")

	records, err := s.fetcher.FetchAll(ctx, endpoint, params, recordLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", dataset, err)
	}

	s.logger.Info().
		Str("dataset", dataset).
		Int("records", len(records)).
		Msg("Extraction session complete")

	return records, nil
}
