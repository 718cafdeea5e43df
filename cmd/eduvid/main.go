package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"eduvid-pipeline/config"
	"eduvid-pipeline/llm"
	"eduvid-pipeline/pipeline"
	"eduvid-pipeline/types"
)

var (
	flagConfig string
	flagOutput string
	flag3D     bool
	flag2D     bool
)

func main() {
	_ = godotenv.Load()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	root := &cobra.Command{
		Use:   "eduvid",
		Short: "Generate narrated educational animation videos from a topic prompt",
	}

	generate := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate one video for a topic",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
	generate.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config.yaml")
	generate.Flags().StringVarP(&flagOutput, "output", "o", "", "output filename stem")
	generate.Flags().BoolVar(&flag3D, "3d", false, "force 3D scene rendering")
	generate.Flags().BoolVar(&flag2D, "2d", false, "force 2D scene rendering")
	generate.MarkFlagsMutuallyExclusive("3d", "2d")

	root.AddCommand(generate)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	ctx := context.Background()
	client, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		return err
	}

	mode := types.ModeAuto
	if flag3D {
		mode = types.ModeForce3D
	} else if flag2D {
		mode = types.ModeForce2D
	}

	result, err := pipeline.New(cfg, client).Run(ctx, types.GenerationRequest{
		Topic:      args[0],
		SceneMode:  mode,
		OutputName: flagOutput,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Video: %s\n", result.VideoPath)
	fmt.Printf("Narration: %s\n", result.Narration)
	return nil
}
