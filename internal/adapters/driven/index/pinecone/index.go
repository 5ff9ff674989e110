// Package pinecone provides a vector index adapter for a hosted Pinecone index.
package pinecone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Metadata keys written by the ingestion pipeline.
const (
	metaText       = "text"
	metaSource     = "source"
	metaPage       = "page"
	metaLoc        = "loc"
	metaPageNumber = "loc.pageNumber"
)

// Config holds configuration for the Pinecone index.
type Config struct {
	// APIKey authenticates every request (required).
	APIKey string

	// IndexName is the Pinecone index to query (required).
	IndexName string

	// Namespace partitions vectors within the index.
	Namespace string

	// Host is the index data-plane host. Resolved from IndexName when empty.
	Host string

	// ControlURL overrides the control-plane URL (default: the SDK's).
	ControlURL string

	// HTTPClient is used for control-plane calls (default: the SDK's).
	HTTPClient *http.Client
}

// queryConn is the part of a Pinecone index connection used for search.
type queryConn interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	Close() error
}

// Index queries a Pinecone index through the Pinecone Go SDK.
type Index struct {
	client    *pinecone.Client
	name      string
	namespace string

	// connect opens a data-plane connection to host.
	connect func(host string) (queryConn, error)

	mu   sync.Mutex
	host string
	conn queryConn
}

// NewIndex creates a Pinecone index handle. It performs no network calls.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.IndexName == "" {
		return nil, domain.ErrMissingIndexName
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: API key is required")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey:     cfg.APIKey,
		Host:       cfg.ControlURL,
		RestClient: cfg.HTTPClient,
		SourceTag:  "pdfchat",
	})
	if err != nil {
		return nil, fmt.Errorf("create pinecone client: %w", err)
	}

	x := &Index{
		client:    client,
		name:      cfg.IndexName,
		namespace: cfg.Namespace,
		host:      normaliseHost(cfg.Host),
	}
	x.connect = func(host string) (queryConn, error) {
		return client.Index(pinecone.NewIndexConnParams{Host: host, Namespace: x.namespace})
	}
	return x, nil
}

// Name returns the index name.
func (x *Index) Name() string {
	return x.name
}

// Namespace returns the namespace queries are scoped to.
func (x *Index) Namespace() string {
	return x.namespace
}

// Search returns the k nearest passages to query within the namespace.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: pinecone topK %d", domain.ErrInvalidInput, k)
	}

	conn, err := x.connection(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          query,
		TopK:            uint32(k),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, queryError(x.name, err)
	}
	logger.Debug("Pinecone %s/%s: %d matches", x.name, x.namespace, len(resp.Matches))

	hits := make([]driven.VectorHit, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		var metadata map[string]any
		if m.Vector.Metadata != nil {
			metadata = m.Vector.Metadata.AsMap()
		}
		hits = append(hits, driven.VectorHit{
			ID:      m.Vector.Id,
			Score:   float64(m.Score),
			Passage: passageFromMetadata(m.Vector.Id, metadata),
		})
	}
	return hits, nil
}

// Ping describes the index and fails unless it exists and is ready.
func (x *Index) Ping(ctx context.Context) error {
	desc, err := x.describe(ctx)
	if err != nil {
		return err
	}
	if desc.Status == nil || !desc.Status.Ready {
		state := "unknown"
		if desc.Status != nil {
			state = string(desc.Status.State)
		}
		return fmt.Errorf("%w: pinecone index %s is %s", domain.ErrVectorIndexUnavailable, x.name, state)
	}
	return nil
}

// Close releases the data-plane connection, if one was opened.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn == nil {
		return nil
	}
	err := x.conn.Close()
	x.conn = nil
	return err
}

// connection returns the data-plane connection, describing the index once
// to find its host when none was configured.
func (x *Index) connection(ctx context.Context) (queryConn, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn != nil {
		return x.conn, nil
	}

	if x.host == "" {
		desc, err := x.describe(ctx)
		if err != nil {
			return nil, err
		}
		if desc.Host == "" {
			return nil, fmt.Errorf("%w: pinecone index %s has no host", domain.ErrVectorIndexUnavailable, x.name)
		}
		x.host = normaliseHost(desc.Host)
		logger.Debug("Resolved Pinecone host: %s", x.host)
	}

	conn, err := x.connect(x.host)
	if err != nil {
		return nil, fmt.Errorf("%w: pinecone: %w", domain.ErrVectorIndexUnavailable, err)
	}
	x.conn = conn
	return conn, nil
}

func (x *Index) describe(ctx context.Context) (*pinecone.Index, error) {
	desc, err := x.client.DescribeIndex(ctx, x.name)
	if err != nil {
		var pe *pinecone.PineconeError
		if errors.As(err, &pe) && pe.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w: pinecone index %s", domain.ErrVectorIndexUnavailable, domain.ErrNotFound, x.name)
		}
		return nil, fmt.Errorf("%w: describe pinecone index %s: %w", domain.ErrVectorIndexUnavailable, x.name, err)
	}
	if desc == nil {
		return nil, fmt.Errorf("%w: pinecone index %s: empty description", domain.ErrVectorIndexUnavailable, x.name)
	}
	return desc, nil
}

// queryError maps a data-plane gRPC failure onto the domain errors.
func queryError(name string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("pinecone query: %w", err)
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: pinecone index %s: %w", domain.ErrNotFound, name, err)
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: pinecone: %w", domain.ErrRateLimited, err)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: pinecone query: %w", domain.ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: pinecone query: %w", domain.ErrVectorIndexUnavailable, err)
	}
}

// normaliseHost strips the scheme and trailing slash; the SDK dials the bare host.
func normaliseHost(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

// passageFromMetadata maps stored metadata onto a passage.
// Unrecognised keys are kept in Extra.
func passageFromMetadata(id string, metadata map[string]any) domain.Passage {
	p := domain.Passage{ID: id}
	extra := make(map[string]any)

	for key, value := range metadata {
		switch key {
		case metaText:
			p.Text, _ = value.(string)
		case metaSource:
			p.Metadata.Source, _ = value.(string)
		case metaPage, metaPageNumber:
			if n, ok := toInt(value); ok {
				p.Metadata.Page = n
			}
		case metaLoc:
			if n, ok := locPage(value); ok && p.Metadata.Page == 0 {
				p.Metadata.Page = n
			}
		default:
			extra[key] = value
		}
	}
	if len(extra) > 0 {
		p.Metadata.Extra = extra
	}
	return p
}

// locPage reads pageNumber from a loc value stored as an object or a JSON string.
func locPage(value any) (int, bool) {
	switch v := value.(type) {
	case map[string]any:
		return toInt(v["pageNumber"])
	case string:
		var loc map[string]any
		if err := json.Unmarshal([]byte(v), &loc); err != nil {
			return 0, false
		}
		return toInt(loc["pageNumber"])
	default:
		return 0, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
