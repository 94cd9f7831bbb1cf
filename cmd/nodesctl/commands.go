package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/Flarenzy/node-inventory/internal/db"
	"github.com/Flarenzy/node-inventory/internal/inventory"
	"github.com/Flarenzy/node-inventory/internal/ipv4"
	"github.com/Flarenzy/node-inventory/internal/search"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "nodesctl",
		Short:        "Query and maintain the node inventory",
		SilenceUsage: true,
	}
	root.AddCommand(newSearchCmd(), newHistoryCmd(), newMigrateCmd(), newIPv4Cmd())
	return root
}

func newSearchCmd() *cobra.Command {
	var (
		networks  []int64
		threshold string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Print the identifiers of nodes matching a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := search.DefaultConfig()
			if threshold != "" {
				t, err := search.ParseThreshold(threshold)
				if err != nil {
					return err
				}
				cfg.Threshold = t
			}
			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				svc := inventory.NewNodeService(db.NewNodeRepository(pool), cfg)
				vids, err := svc.Search(cmd.Context(), args[0], networks)
				if err != nil {
					return err
				}
				for _, v := range vids {
					fmt.Fprintln(cmd.OutOrStdout(), v)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64SliceVar(&networks, "network", nil, "restrict to network id (repeatable)")
	cmd.Flags().StringVar(&threshold, "threshold", os.Getenv("VID_SEARCH_THRESHOLD"), "identifier range threshold")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <vid> <field>",
		Short: "Print the past values of a tracked field, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				svc := inventory.NewNodeService(db.NewNodeRepository(pool), search.DefaultConfig())
				entries, err := svc.History(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				type entry struct {
					Timestamp string `json:"timestamp"`
					Value     string `json:"value"`
				}
				out := make([]entry, 0, len(entries))
				for _, e := range entries {
					out = append(out, entry{Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05Z"), Value: e.Value})
				}
				return enc.Encode(out)
			})
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				if !status {
					if err := db.MigrateUp(pool); err != nil {
						return err
					}
				}
				version, dirty, err := db.MigrationVersion(pool)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", version, dirty)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "only print the current schema version")
	return cmd
}

func newIPv4Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipv4",
		Short: "Convert between dotted-quad and numeric addresses",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "u32 <addr>",
			Short: "Print the numeric form of an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, ok := ipv4.ToU32(args[0])
				if !ok {
					return fmt.Errorf("invalid address %q", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), u)
				return nil
			},
		},
		&cobra.Command{
			Use:   "addr <u32>",
			Short: "Print the dotted-quad form of a number",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid number %q: %w", args[0], err)
				}
				addr, ok := ipv4.ToAddress(n)
				if !ok {
					return fmt.Errorf("%d is outside [0, %d]", n, ipv4.MaxU32)
				}
				fmt.Fprintln(cmd.OutOrStdout(), addr)
				return nil
			},
		},
		&cobra.Command{
			Use:   "bounds <cidr|range>",
			Short: "Print the first and last numeric address of a block",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				lower, upper, ok := ipv4.Bounds(args[0])
				if !ok {
					return fmt.Errorf("invalid cidr or range %q", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", lower, upper)
				return nil
			},
		},
	)
	return cmd
}

func withPool(ctx context.Context, fn func(*pgxpool.Pool) error) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	dsn := os.Getenv("DB_CONN")
	if dsn == "" {
		return errors.New("missing required environment variable: DB_CONN")
	}
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(pool)
}
