// Package app wires configuration, the store backend and the social services
// together for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"campusnet/backend/internal/connections"
	"campusnet/backend/internal/directory"
	"campusnet/backend/internal/feed"
	"campusnet/backend/internal/graph"
	"campusnet/backend/internal/query"
	"campusnet/backend/internal/store"
	"campusnet/backend/internal/store/memory"
	"campusnet/backend/pkg/config"
)

// Services holds every domain service over one store
type Services struct {
	Store     store.Store
	Directory *directory.Directory
	Graph     *connections.Graph
	Posts     *feed.Posts
	Comments  *feed.Comments
	Profiles  *query.Profiles
	Feed      *query.Feed
}

// NewServices builds the domain services over s
func NewServices(s store.Store) *Services {
	dir := directory.New(s)
	posts := feed.NewPosts(s)
	comments := feed.NewComments(s)
	return &Services{
		Store:     s,
		Directory: dir,
		Graph:     connections.NewGraph(dir),
		Posts:     posts,
		Comments:  comments,
		Profiles:  query.NewProfiles(dir),
		Feed:      query.NewFeed(dir, posts, comments),
	}
}

// Health returns a reachability probe for stores that support one
func Health(s store.Store) func(ctx context.Context) error {
	if p, ok := s.(interface {
		VerifyConnectivity(ctx context.Context) error
	}); ok {
		return p.VerifyConnectivity
	}
	return nil
}

// OpenStore opens the configured backend. Neo4j is verified and its schema ensured.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Warn("Using in-memory store; data is lost on exit")
		return memory.New(), nil
	case config.StoreNeo4j:
		repo, err := OpenGraph(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = repo.Close(ctx)
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		log.Info("Connected to Neo4j", zap.String("uri", cfg.Neo4jURI))
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// OpenGraph connects to Neo4j and verifies connectivity
func OpenGraph(ctx context.Context, cfg *config.Config) (*graph.Repository, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	repo := graph.NewRepository(driver, graph.Options{
		Database:           cfg.Neo4jDatabase,
		BreakerMaxFailures: uint32(cfg.BreakerMaxFailures),
		BreakerTimeout:     cfg.BreakerTimeout,
	})
	if err := repo.VerifyConnectivity(ctx); err != nil {
		_ = repo.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}
	return repo, nil
}
