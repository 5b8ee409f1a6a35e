package backlinks

import (
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalorg/katalorg/internal/collection"
	"github.com/katalorg/katalorg/internal/report"
	"github.com/katalorg/katalorg/internal/state"
)

type options struct {
	overwrite bool
	extension string
	missing   bool
	broken    bool
	orphans   bool
}

func NewCmdBacklinks(s *state.State) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "backlinks [path]",
		Aliases: []string{"bl", "sync"},
		Short:   "Rewrite the backlinks section of every note in the vault.",
		Long: heredoc.Doc(`
			Scans the note tree, builds the reverse-link graph, and rewrites
			each note's "Links to this note" section to match the notes that
			currently link to it. Notes whose section is already up to date
			are left untouched, so a second run changes nothing.
		`),
		Example: heredoc.Doc(`
			katalorg backlinks
			katalorg backlinks ~/notes --orphans --broken
			katalorg bl -o
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s, opts)
		},
	}

	cmd.Flags().
		BoolVarP(&opts.overwrite, "overwrite", "o", false, "overwrite existing backlinks, even if the same")
	cmd.Flags().
		StringVarP(&opts.extension, "extension", "e", s.Config.Extension, "file extension of note files")
	cmd.Flags().
		BoolVar(&opts.missing, "missing", false, "print list of notes missing an id")
	cmd.Flags().
		BoolVar(&opts.broken, "broken", false, "print list of broken links")
	cmd.Flags().
		BoolVar(&opts.orphans, "orphans", false, "print list of orphans")
	viper.BindPFlag("extension", cmd.Flags().Lookup("extension"))

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

	extension := viper.GetString("extension")
	if extension == "" {
		extension = opts.extension
	}

	c := collection.New()
	if err := c.Import(path, extension, s.NoteFactory()); err != nil {
		return err
	}

	c.FindBacklinks()
	c.Classify()

	updated, err := c.UpdateBacklinksSections(opts.overwrite)
	if err != nil {
		return err
	}

	markdown := report.Build(path, time.Now(), c, updated, report.Options{
		ShowMissing: opts.missing,
		ShowBroken:  opts.broken,
		ShowOrphans: opts.orphans,
	})

	return report.Render(cmd.OutOrStdout(), markdown)
}
