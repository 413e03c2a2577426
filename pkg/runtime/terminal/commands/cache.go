package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/riskread/pkg/adapters"
)

func NewCacheCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the local analysis cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := env.Cache.List(cmd.Context())
			if err != nil {
				return err
			}
			latest, _, err := env.Cache.Latest(cmd.Context())
			if err != nil {
				return err
			}
			return env.Table.Handle(adapters.MapCacheToReport(entries, latest))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "latest",
		Short: "Print the id of the most recently cached analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, ok, err := env.Cache.Latest(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no analysis cached yet")
			}
			fmt.Fprintln(env.Out, id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.Cache.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(env.Out, "cache cleared")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Drop expired and least recently used entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := env.Cache.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "pruned %d entries\n", n)
			return nil
		},
	})

	return cmd
}
