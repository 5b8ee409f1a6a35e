package generate

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/katalorg/katalorg/internal/collection"
	"github.com/katalorg/katalorg/internal/state"
	"github.com/katalorg/katalorg/internal/zid"
)

type options struct {
	date      string
	extension string
	copyID    bool
}

func NewCmdGenerate(s *state.State) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "generate [path]",
		Aliases: []string{"gen", "id"},
		Short:   "Suggest a fresh note identifier.",
		Long: heredoc.Doc(`
			Prints a 14-digit timestamp identifier that no note in the vault
			uses yet. The date flag fixes the leading positions; anything it
			leaves open is randomized until the identifier is unique.
		`),
		Example: heredoc.Doc(`
			katalorg generate
			katalorg generate --date 2021
			katalorg generate --date "2021-03-15 12:30" --copy
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s, opts)
		},
	}

	cmd.Flags().
		StringVarP(&opts.date, "date", "d", "", "date or time stamp to embed in the id (default: now)")
	cmd.Flags().
		StringVarP(&opts.extension, "extension", "e", s.Config.Extension, "file extension of note files")
	cmd.Flags().
		BoolVarP(&opts.copyID, "copy", "c", false, "copy the id to the clipboard")

	return cmd
}

func run(cmd *cobra.Command, args []string, s *state.State, opts options) error {
	var target string
	if len(args) > 0 {
		target = args[0]
	}

	path, err := s.ResolveVault(target)
	if err != nil {
		return err
	}

	c := collection.New()
	if err := c.Import(path, opts.extension, s.NoteFactory()); err != nil {
		return err
	}

	date := opts.date
	if date == "" {
		date = zid.Now()
	} else if date, err = zid.Normalize(date); err != nil {
		return err
	}

	id, err := zid.Suggest(date)
	if err != nil {
		return err
	}
	for c.Contains(id) {
		if id, err = zid.Suggest(date); err != nil {
			return err
		}
	}

	if opts.copyID {
		if err := clipboard.WriteAll(id); err != nil {
			return fmt.Errorf("failed to copy id to clipboard: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
