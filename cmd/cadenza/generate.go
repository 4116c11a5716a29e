package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/cadenza/internal/adapters/plex"
	"github.com/ewilliams-labs/cadenza/internal/adapters/sqlite"
	"github.com/ewilliams-labs/cadenza/internal/core/domain"
	"github.com/ewilliams-labs/cadenza/internal/core/services"
)

type runSpec struct {
	Seeds  domain.SeedSpec       `json:"seeds"`
	Filter domain.FilterSpec     `json:"filter"`
	Params domain.PlaylistParams `json:"params"`
}

func newGenerateCommand() *cobra.Command {
	var specFile string
	var presetName string
	var preview bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the engine once and create a playlist",
		Long: `Runs one generation pass against the configured Plex library.
The run spec comes from a JSON file (--spec) or a saved preset (--preset).
With --preview the selected tracks are printed without creating a playlist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (specFile == "") == (presetName == "") {
				return fmt.Errorf("exactly one of --spec or --preset is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			var spec runSpec
			if specFile != "" {
				data, err := os.ReadFile(specFile)
				if err != nil {
					return fmt.Errorf("read spec file: %w", err)
				}
				if err := json.Unmarshal(data, &spec); err != nil {
					return fmt.Errorf("parse spec file: %w", err)
				}
			} else {
				repo, err := sqlite.NewAdapter(cfg.DBPath)
				if err != nil {
					return err
				}
				preset, err := repo.GetByName(cmd.Context(), presetName)
				repo.Close()
				if err != nil {
					return fmt.Errorf("load preset %q: %w", presetName, err)
				}
				spec = runSpec{Seeds: preset.Seeds, Filter: preset.Filter, Params: preset.Params}
			}

			catalog := plex.NewClient(
				&http.Client{Timeout: 30 * time.Second},
				cfg.PlexURL, cfg.PlexToken, cfg.PlexSection,
				plex.WithLogger(log),
			)
			engine := services.NewEngine(catalog, services.WithLogger(log))

			result, err := engine.Run(cmd.Context(), spec.Seeds, spec.Filter, spec.Params)
			if err != nil {
				return err
			}

			if result.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "no tracks selected")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", result.Title)
			for i, t := range result.Tracks {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %s - %s\n", i+1, t.ArtistName, t.Title)
			}

			if preview {
				return nil
			}

			key, err := catalog.Materialize(cmd.Context(), result)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created playlist %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&specFile, "spec", "", "path to a JSON run spec")
	cmd.Flags().StringVar(&presetName, "preset", "", "name of a saved preset")
	cmd.Flags().BoolVar(&preview, "preview", false, "print the selection without creating a playlist")

	return cmd
}
