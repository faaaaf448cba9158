package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/tagfind"
)

type filterOptions struct {
	tags    []string
	commit  string
	showAll bool
}

func newFilterCmd(root *rootOptions) *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show outlines carrying every given tag",
		Example: `  tagfindctl filter -f outlines.yaml --tag golang --tag notes
  tagfindctl filter -f outlines.yaml --tag golang --commit first`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFilter(cmd.OutOrStdout(), cmd.ErrOrStderr(), root, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.tags, "tag", "t", nil, "required tag (repeatable)")
	cmd.Flags().StringVar(&opts.commit, "commit", "", `commit "first" visible outline or the outline at an index`)
	cmd.Flags().BoolVar(&opts.showAll, "show-all", false, "show every outline while no tag is given")
	return cmd
}

func runFilter(out, errOut io.Writer, root *rootOptions, opts *filterOptions) error {
	outlines, err := loadOutlines(root.file)
	if err != nil {
		return err
	}

	sessOpts := []tagfind.Option{tagfind.WithLogger(root.logger(errOut))}
	if opts.showAll {
		sessOpts = append(sessOpts, tagfind.WithEmptyFilter(tagfind.ShowAll))
	}
	s, err := tagfind.NewTagged[outline](sessOpts...)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	s.Reset(outlines, nil)
	vis := s.Visibility()
	for _, tag := range opts.tags {
		vis = s.AddTag(tag)
		if vis.Count() == 0 {
			warnUnknownTag(errOut, s, tag)
		}
	}

	for _, i := range vis.Indexes() {
		o := s.At(i)
		fmt.Fprintf(out, "%d\t%s\t%s\n", i, s.Name(i), strings.Join(o.Tags, ","))
	}
	fmt.Fprintf(out, "%d of %d outlines match\n", vis.Count(), s.Len())

	if opts.commit == "" {
		return nil
	}
	return commit(out, s, opts.commit)
}

func commit(out io.Writer, s *tagfind.Session[outline], target string) error {
	if target == "first" {
		chosen, ok := s.CommitFirstVisible()
		if !ok {
			return fmt.Errorf("nothing to commit: no outline matches")
		}
		fmt.Fprintf(out, "chosen: %s\n", describe(chosen))
		return nil
	}

	index, err := strconv.Atoi(target)
	if err != nil {
		return fmt.Errorf("--commit must be \"first\" or an index, got %q", target)
	}
	chosen, err := s.CommitExplicit(index)
	if err != nil {
		return fmt.Errorf("commit %d: %w", index, err)
	}
	fmt.Fprintf(out, "chosen: %s\n", describe(chosen))
	return nil
}

func warnUnknownTag(errOut io.Writer, s *tagfind.Session[outline], tag string) {
	sugg := s.Suggest(tag)
	if len(sugg) == 0 {
		return
	}
	names := make([]string, len(sugg))
	for i, sg := range sugg {
		names[i] = sg.Tag
	}
	fmt.Fprintf(errOut, "no outline matches after %q; did you mean %s?\n", tag, strings.Join(names, ", "))
}

func describe(o outline) string {
	if o.Ref == "" {
		return o.Name
	}
	return fmt.Sprintf("%s (%s)", o.Name, o.Ref)
}
