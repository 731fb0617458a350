package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/wealthnet/internal/generator"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wealthnet-datagen: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := generator.DefaultConfig()
	var (
		output      string
		writeStdout bool
		format      string
	)
	cmd := &cobra.Command{
		Use:           "wealthnet-datagen",
		Short:         "Generate a synthetic wealth network dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.ClientRatio = clampProbability(cfg.ClientRatio)
			cfg.InfluencerRate = clampProbability(cfg.InfluencerRate)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			dataset, err := generator.New(cfg).Generate(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if writeStdout {
				f := generator.Format(format)
				if f != generator.FormatYAML {
					f = generator.FormatJSON
				}
				return generator.Encode(cmd.OutOrStdout(), dataset, f)
			}
			if err := generator.WriteDataset(dataset, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d nodes and %d edges into %s\n", len(dataset.Nodes), len(dataset.Edges), output)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.NumRMs, "rms", cfg.NumRMs, "relationship managers")
	f.IntVar(&cfg.NumPersons, "persons", cfg.NumPersons, "people")
	f.IntVar(&cfg.NumCompanies, "companies", cfg.NumCompanies, "companies")
	f.IntVar(&cfg.NumEvents, "events", cfg.NumEvents, "liquidity events")
	f.IntVar(&cfg.NumNetworks, "networks", cfg.NumNetworks, "clubs and associations")
	f.IntVar(&cfg.KnowsPerPerson, "knows", cfg.KnowsPerPerson, "mean acquaintances per person")
	f.Float64Var(&cfg.ClientRatio, "client-ratio", cfg.ClientRatio, "share of people who are clients")
	f.Float64Var(&cfg.InfluencerRate, "influencer-rate", cfg.InfluencerRate, "share of people flagged as influencers")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for deterministic generation (0 picks one)")
	f.StringVarP(&output, "output", "o", "data/network.json", "output file; .yaml or .yml selects YAML")
	f.BoolVar(&writeStdout, "stdout", false, "write the dataset to stdout instead of a file")
	f.StringVar(&format, "format", string(generator.FormatJSON), "stdout format: json or yaml")
	return cmd
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
