package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campusnet/backend/internal/app"
	"campusnet/backend/internal/graph"
	"campusnet/backend/pkg/config"
	"campusnet/backend/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openGraph loads configuration, initialises the logger and connects to Neo4j.
// The caller must close the repository.
func openGraph(ctx context.Context) (*graph.Repository, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Env); err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	repo, err := app.OpenGraph(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return repo, logger.Get(), nil
}

var rootCmd = &cobra.Command{
	Use:           "socialctl",
	Short:         "Maintenance commands for the campusnet graph store",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create constraints and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, log, err := openGraph(ctx)
		if err != nil {
			return err
		}
		defer repo.Close(context.Background())
		defer logger.Sync()

		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
		log.Info("Schema ensured", zap.Int("statements", len(graph.SchemaStatements)))
		fmt.Printf("Applied %d schema statements\n", len(graph.SchemaStatements))
		return nil
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check connection symmetry and comment counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, _, err := openGraph(ctx)
		if err != nil {
			return err
		}
		defer repo.Close(context.Background())
		defer logger.Sync()

		violations, err := repo.Audit(ctx)
		if err != nil {
			return fmt.Errorf("running audit: %w", err)
		}
		if len(violations) == 0 {
			fmt.Println("No violations found.")
			return nil
		}

		for _, v := range violations {
			fmt.Println(formatViolation(v))
		}
		return fmt.Errorf("%d violations found", len(violations))
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all users, posts and comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return errors.New("refusing to delete data without --force")
		}

		ctx := cmd.Context()
		repo, _, err := openGraph(ctx)
		if err != nil {
			return err
		}
		defer repo.Close(context.Background())
		defer logger.Sync()

		if err := repo.Reset(ctx); err != nil {
			return fmt.Errorf("resetting store: %w", err)
		}
		fmt.Println("Store reset.")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with demo users, connections, posts and comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, _ := cmd.Flags().GetInt("users")
		posts, _ := cmd.Flags().GetInt("posts")

		ctx := cmd.Context()
		repo, log, err := openGraph(ctx)
		if err != nil {
			return err
		}
		defer repo.Close(context.Background())
		defer logger.Sync()

		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}

		report, err := seed(ctx, app.NewServices(repo), seedOptions{Users: users, PostsPerUser: posts})
		if err != nil {
			return err
		}
		log.Info("Seeding completed",
			zap.Int("users", report.Users),
			zap.Int("connections", report.Connections),
			zap.Int("pending", report.Pending),
			zap.Int("posts", report.Posts),
			zap.Int("comments", report.Comments),
		)
		fmt.Printf("Seeded %d users, %d connections, %d pending requests, %d posts, %d comments\n",
			report.Users, report.Connections, report.Pending, report.Posts, report.Comments)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("force", false, "Confirm deletion of all data")
	seedCmd.Flags().Int("users", 8, "Number of users to create")
	seedCmd.Flags().Int("posts", 2, "Posts per user")

	rootCmd.AddCommand(schemaCmd, auditCmd, resetCmd, seedCmd)
}
