package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artryazanov/shorts-maker/internal/config"
	"github.com/artryazanov/shorts-maker/internal/logging"
	"github.com/artryazanov/shorts-maker/internal/pipeline"
)

var (
	cfgFile   string
	verbose   bool
	outputDir string
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shorts-maker",
	Short: "shorts-maker - automatic short clip generation",
	Long:  "Selects the most intense scenes of long videos by combining scene detection with an audio action profile, then renders them as short-format clips.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, subs, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			log.Warn().Str("field", sub.Field).Str("value", sub.Value).Str("default", sub.Default).
				Msg("invalid config value, using default")
		}

		if outputDir != "" {
			cfg.OutputDir = outputDir
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory for rendered shorts")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(configCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [input video or directory]",
	Short: "Select, rank and render shorts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		return pipe.ProcessBatch(cmd.Context(), args[0])
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input video]",
	Short: "Print the ranked shortlist without rendering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		shortlist, err := pipe.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		for i, ranked := range shortlist {
			log.Info().
				Int("rank", i+1).
				Float64("start", ranked.Scene.Start).
				Float64("end", ranked.Scene.End).
				Float64("duration", ranked.Scene.Duration()).
				Float64("action_score", ranked.ActionScore).
				Msg("shortlisted scene")
		}

		log.Info().
			Str("input", args[0]).
			Int("scenes", len(shortlist)).
			Msg("analysis complete")

		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
