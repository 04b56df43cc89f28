package similarity

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

const (
	// Threshold is the exclusive lower bound for connecting two dreams.
	Threshold = 0.3

	// MaxConnections caps the edges returned in a Network.
	MaxConnections = 10

	// MinDreams is the smallest journal a network is built for.
	MinDreams = 2
)

// ErrNotEnoughDreams is returned when fewer than MinDreams have text.
var ErrNotEnoughDreams = errors.New("at least two dreams are required for network analysis")

// Dream is one node candidate for the network.
type Dream struct {
	ID        uuid.UUID
	Title     string
	Body      string
	DreamDate time.Time
}

// Text is the embedded representation of the dream.
func (d Dream) Text() string {
	return strings.TrimSpace(d.Title + " " + d.Body)
}

// NodeRef identifies a dream in a connection.
type NodeRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Date  string    `json:"date"`
}

// Connection links two similar dreams.
type Connection struct {
	Dream1     NodeRef `json:"dream1"`
	Dream2     NodeRef `json:"dream2"`
	Similarity float64 `json:"similarity"`
}

// Network is the strongest connections among a user's dreams.
type Network struct {
	Connections      []Connection `json:"network"`
	TotalConnections int          `json:"total_connections"`
}

// NetworkBuilder computes dream networks.
type NetworkBuilder struct {
	embedder Embedder
	logger   *slog.Logger
}

// NewNetworkBuilder creates a builder that embeds with embedder.
func NewNetworkBuilder(embedder Embedder, log *slog.Logger) *NetworkBuilder {
	if log == nil {
		log = slog.Default()
	}
	return &NetworkBuilder{
		embedder: embedder,
		logger:   log.With("component", "similarity_network"),
	}
}

// Build embeds every dream with text, indexes the vectors and returns the
// MaxConnections most similar pairs above Threshold, strongest first.
func (b *NetworkBuilder) Build(ctx context.Context, dreams []Dream) (*Network, error) {
	log := logger.FromContextOrDefault(ctx, b.logger)

	byID := make(map[string]Dream, len(dreams))
	texts := make(map[string]string, len(dreams))
	var ids []string
	for _, d := range dreams {
		text := d.Text()
		if text == "" {
			continue
		}
		id := d.ID.String()
		byID[id] = d
		texts[id] = text
		ids = append(ids, id)
	}
	if len(ids) < MinDreams {
		return nil, ErrNotEnoughDreams
	}

	collection, err := chromem.NewDB().CreateCollection("dreams", nil, b.embedder.Embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	for _, id := range ids {
		vec, err := b.embedder.Embed(ctx, texts[id])
		if err != nil {
			log.Error("failed to embed dream", "dream_id", id, "error", redact.Error(err))
			return nil, fmt.Errorf("failed to embed dream %s: %w", id, err)
		}
		if err := collection.AddDocument(ctx, chromem.Document{
			ID:        id,
			Content:   texts[id],
			Embedding: vec,
		}); err != nil {
			return nil, fmt.Errorf("failed to index dream %s: %w", id, err)
		}
	}

	var connections []Connection
	for i, id := range ids {
		results, err := collection.Query(ctx, texts[id], collection.Count(), nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to query similar dreams: %w", err)
		}
		for _, r := range results {
			j := slices.Index(ids, r.ID)
			// Each unordered pair is visited once, from its earlier member.
			if j <= i || float64(r.Similarity) <= Threshold {
				continue
			}
			connections = append(connections, Connection{
				Dream1:     ref(byID[id]),
				Dream2:     ref(byID[r.ID]),
				Similarity: math.Round(float64(r.Similarity)*1000) / 1000,
			})
		}
	}

	slices.SortStableFunc(connections, func(a, b Connection) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})

	network := &Network{TotalConnections: len(connections)}
	network.Connections = connections[:min(len(connections), MaxConnections)]
	if network.Connections == nil {
		network.Connections = []Connection{}
	}

	log.Debug("dream network built", "dreams", len(ids), "connections", network.TotalConnections)
	return network, nil
}

func ref(d Dream) NodeRef {
	return NodeRef{ID: d.ID, Title: d.Title, Date: d.DreamDate.Format(time.DateOnly)}
}
