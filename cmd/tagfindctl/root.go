package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/tagfind/internal/version"
)

type rootOptions struct {
	file    string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tagfindctl",
		Short:         "Find an outline by tag",
		Long:          "Narrow the outlines of a YAML file by required tags and commit one of them.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "outlines.yaml", "outline file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log session operations to stderr")

	cmd.AddCommand(newFilterCmd(opts), newVocabCmd(opts))
	return cmd
}

func (o *rootOptions) logger(stderr io.Writer) *slog.Logger {
	if !o.verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
