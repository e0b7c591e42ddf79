package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/portfolio/internal/server"
	"github.com/sakif/portfolio/internal/service"
)

// newSeedCmd copies the bundled projects and certificates into the
// configured document store under their bundled IDs, then rebuilds the
// local cache from the store. Safe to run more than once.
func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Copy the bundled dataset into the document store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := server.OpenDB(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			store, remote := server.OpenStore(a.cfg, db, a.logger)
			if remote != nil {
				defer remote.Close(ctx)
			}

			res, err := service.Seed(ctx, store, service.BundledStatic, a.logger)
			if err != nil {
				return err
			}

			catalog := service.NewCatalogService(store, db, service.BundledStatic, service.CatalogOptions{
				KeepStale: a.cfg.Cache.KeepStale,
			}, a.logger)
			catalog.Refresh(ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d projects and %d certificates into %s\n",
				res.Projects, res.Certificates, store.Name())
			return nil
		},
	}
}
