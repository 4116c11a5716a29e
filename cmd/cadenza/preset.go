package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ewilliams-labs/cadenza/internal/adapters/sqlite"
	"github.com/ewilliams-labs/cadenza/internal/core/ports"
)

func newPresetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved run presets",
	}
	cmd.AddCommand(newPresetListCommand())
	cmd.AddCommand(newPresetShowCommand())
	cmd.AddCommand(newPresetSaveCommand())
	cmd.AddCommand(newPresetDeleteCommand())
	return cmd
}

func openPresetStore() (*sqlite.Adapter, error) {
	return sqlite.NewAdapter(viper.GetString("db.path"))
}

func newPresetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List preset names",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openPresetStore()
			if err != nil {
				return err
			}
			defer repo.Close()

			names, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newPresetShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a preset as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openPresetStore()
			if err != nil {
				return err
			}
			defer repo.Close()

			preset, err := repo.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(preset)
		},
	}
}

func newPresetSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <spec-file>",
		Short: "Save a JSON run spec under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read spec file: %w", err)
			}
			var spec runSpec
			if err := json.Unmarshal(data, &spec); err != nil {
				return fmt.Errorf("parse spec file: %w", err)
			}

			repo, err := openPresetStore()
			if err != nil {
				return err
			}
			defer repo.Close()

			preset := ports.Preset{
				Name:   args[0],
				Seeds:  spec.Seeds,
				Filter: spec.Filter,
				Params: spec.Params,
			}
			if err := repo.Save(cmd.Context(), preset); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved preset %s\n", preset.Name)
			return nil
		},
	}
}

func newPresetDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openPresetStore()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted preset %s\n", args[0])
			return nil
		},
	}
}
