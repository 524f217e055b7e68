package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/career-roadmap/internal/config"
	"alfredoptarigan/career-roadmap/internal/logger"
	"alfredoptarigan/career-roadmap/internal/services"
)

func main() {
	if err := newRootCmd(newApp(os.Stdin, os.Stdout)).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand shares. Stages are built on first use so
// commands that never call the oracle need no API key.
type app struct {
	cfg *config.Config
	log *logger.Logger
	in  io.Reader
	out io.Writer

	newStages func(ctx context.Context) (services.StageService, error)
}

func newApp(in io.Reader, out io.Writer) *app {
	a := &app{in: in, out: out}
	a.newStages = a.buildStages
	return a
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "roadmap",
		Short:         "Turn a job description into a learning roadmap",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg == nil {
				a.cfg = config.Load()
			}
			if a.log == nil {
				log, err := logger.New(a.cfg.Log.Mode)
				if err != nil {
					return err
				}
				a.log = log
			}
			return nil
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)

	root.AddCommand(
		newJDCmd(a),
		newSkillsCmd(a),
		newRoadmapCmd(a),
		newEvaluateCmd(a),
		newAskCmd(a),
		newPipelineCmd(a),
		newAnalyzeCVCmd(a),
	)
	return root
}

func (a *app) buildStages(ctx context.Context) (services.StageService, error) {
	gemini, err := services.NewGeminiService(ctx, a.cfg.Gemini)
	if err != nil {
		return nil, err
	}

	var opts []services.StagesOption
	if a.cfg.Qdrant.Enabled {
		qdrant, err := services.NewQdrantService(a.cfg.Qdrant.URL, a.cfg.Qdrant.APIKey, a.cfg.Qdrant.Collection, a.log)
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithResources(services.NewResourceRetriever(gemini, qdrant, 5)))
	}

	caller := services.NewCaller(gemini, a.cfg.RateLimit, a.log)
	return services.NewStages(caller, a.cfg.Gemini, a.log, opts...), nil
}

// writeOutput saves v to path, or prints it when path is empty.
func (a *app) writeOutput(path string, v interface{}) error {
	if path != "" {
		if err := services.WriteJSONFile(path, v); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Output saved to %s\n", path)
		return nil
	}
	data, err := services.EncodeJSON(v)
	if err != nil {
		return err
	}
	_, err = a.out.Write(data)
	return err
}
