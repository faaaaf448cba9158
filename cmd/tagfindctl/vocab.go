package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/tagfind"
)

func newVocabCmd(root *rootOptions) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "List the tags of an outline file, most used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVocab(cmd.OutOrStdout(), root, prefix)
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "only tags starting with prefix (case-insensitive)")
	return cmd
}

func runVocab(out io.Writer, root *rootOptions, prefix string) error {
	outlines, err := loadOutlines(root.file)
	if err != nil {
		return err
	}

	s, err := tagfind.NewTagged[outline]()
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	s.Reset(outlines, nil)

	for _, tc := range s.Vocabulary(prefix) {
		fmt.Fprintf(out, "%d\t%s\n", tc.Count, tc.Tag)
	}
	return nil
}
