// Package weaviate provides a vector index adapter backed by a Weaviate class.
package weaviate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultHost      = "localhost:8080"
	DefaultScheme    = "http"
	DefaultClassName = "Passage"
)

// Properties stored on each object.
const (
	propText       = "text"
	propSource     = "source"
	propPage       = "page"
	propNamespace  = "namespace"
	propAdditional = "_additional"
)

// Config holds configuration for the Weaviate index.
type Config struct {
	// Host is the Weaviate host and port (default: localhost:8080).
	Host string

	// Scheme is http or https (default: http).
	Scheme string

	// APIKey is optional; set for authenticated clusters.
	APIKey string

	// ClassName is the collection holding the contract passages (default: Passage).
	ClassName string

	// Namespace restricts results to objects whose namespace property matches.
	Namespace string
}

// Index queries a Weaviate class with nearVector searches.
type Index struct {
	client    *weaviate.Client
	className string
	namespace string
}

// NewIndex creates a Weaviate index handle.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Scheme == "" {
		cfg.Scheme = DefaultScheme
	}
	if cfg.ClassName == "" {
		cfg.ClassName = DefaultClassName
	}

	wcfg := weaviate.Config{Host: cfg.Host, Scheme: cfg.Scheme}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	return &Index{
		client:    client,
		className: cfg.ClassName,
		namespace: cfg.Namespace,
	}, nil
}

// Search returns the k nearest passages to query.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	gql := x.client.GraphQL()
	get := gql.Get().
		WithClassName(x.className).
		WithNearVector(gql.NearVectorArgBuilder().WithVector(query)).
		WithFields(resultFields()...).
		WithLimit(k)
	if x.namespace != "" {
		get = get.WithWhere(filters.Where().
			WithPath([]string{propNamespace}).
			WithOperator(filters.Equal).
			WithValueText(x.namespace))
	}

	result, err := get.Do(ctx)
	if werr := combinedWeaviateError(result, err); werr != nil {
		return nil, fmt.Errorf("%w: weaviate: %w", domain.ErrVectorIndexUnavailable, werr)
	}

	hits, err := decodeGetResults(result, x.className)
	if err != nil {
		return nil, err
	}
	logger.Debug("Weaviate %s: %d results", x.className, len(hits))
	return hits, nil
}

// Ping checks that the Weaviate node reports ready.
func (x *Index) Ping(ctx context.Context) error {
	ready, err := x.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: weaviate: %w", domain.ErrVectorIndexUnavailable, err)
	}
	if !ready {
		return fmt.Errorf("%w: weaviate is not ready", domain.ErrVectorIndexUnavailable)
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

func resultFields() []graphql.Field {
	return []graphql.Field{
		{Name: propText},
		{Name: propSource},
		{Name: propPage},
		{Name: propAdditional, Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}},
	}
}

// combinedWeaviateError folds GraphQL errors reported in the response body
// into the transport error.
func combinedWeaviateError(result *models.GraphQLResponse, err error) error {
	if err != nil {
		return err
	}
	if result == nil || len(result.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		if e != nil {
			msgs = append(msgs, e.Message)
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// decodeGetResults converts a Get response for className into hits.
func decodeGetResults(result *models.GraphQLResponse, className string) ([]driven.VectorHit, error) {
	if result == nil {
		return nil, fmt.Errorf("empty weaviate response")
	}
	data, ok := result.Data["Get"]
	if !ok {
		return nil, fmt.Errorf("get key not found in result")
	}
	doc, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("get key unexpected type")
	}
	raw, ok := doc[className]
	if !ok || raw == nil {
		return nil, nil
	}
	objects, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list of results", className)
	}

	hits := make([]driven.VectorHit, 0, len(objects))
	for _, o := range objects {
		obj, ok := o.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid element in list of %s", className)
		}
		text, ok := obj[propText].(string)
		if !ok {
			return nil, fmt.Errorf("expected string text in %s", className)
		}

		hit := driven.VectorHit{Passage: domain.Passage{Text: text}}
		hit.Passage.Metadata.Source, _ = obj[propSource].(string)
		hit.Passage.Metadata.Page = pageOf(obj[propPage])

		if extra, ok := obj[propAdditional].(map[string]any); ok {
			hit.ID, _ = extra["id"].(string)
			if d, ok := extra["distance"].(float64); ok {
				hit.Score = 1 - d
			}
		}
		hit.Passage.ID = hit.ID
		hits = append(hits, hit)
	}
	return hits, nil
}

func pageOf(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}
