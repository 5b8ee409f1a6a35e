package rename

import (
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/katalorg/katalorg/internal/collection"
	"github.com/katalorg/katalorg/internal/note"
	"github.com/katalorg/katalorg/internal/state"
	"github.com/katalorg/katalorg/internal/zid"
)

type options struct {
	extension   string
	indexPrefix string
}

func NewCmdRename(s *state.State) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "rename [path]",
		Aliases: []string{"rn"},
		Short:   "Rename note files to the canonical \"<id> <title>\" form.",
		Long: heredoc.Doc(`
			Renames every identified note file to "<id> <title>" plus the
			note extension. Files whose name starts with the index prefix
			and notes without an ID are left alone. When a file name embeds
			a date that is shorter than an ID and disagrees with the note's
			ID, a new ID is drawn within that date and the note is renamed
			to it; the old and new IDs are printed as ready-to-run
			grep/sed lines so links elsewhere can be rewritten.
		`),
		Example: heredoc.Doc(`
			katalorg rename
			katalorg rename ~/notes -i "§§"
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s, opts)
		},
	}

	cmd.Flags().
		StringVarP(&opts.extension, "extension", "e", s.Config.Extension, "file extension of note files")
	cmd.Flags().
		StringVarP(&opts.indexPrefix, "index", "i", s.Config.IndexPrefix, "prefix of index files, not to be renamed")

	return cmd
}

type replacement struct {
	oldID string
	newID string
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

	out := cmd.OutOrStdout()
	var replacements []replacement

	for _, n := range c.Notes() {
		if strings.HasPrefix(n.Filename(), opts.indexPrefix) {
			continue
		}

		if n.ID() == "" {
			fmt.Fprintf(out, "- Ignores file %s without ID\n", n.Filename())
			continue
		}

		title := zid.StripDatePrefix(n.Title())

		date := zid.DateFromFilename(n.Filename())
		if date != "" && len(date) < 14 && !strings.HasPrefix(n.ID(), date) {
			// The file name pins a day the current ID does not match;
			// draw a fresh ID within that day.
			oldID := n.ID()
			newID, err := zid.SuggestForDay(date)
			if err != nil {
				return err
			}
			for c.Contains(newID) {
				fmt.Fprintln(out, "- Duplicate note id, generating again")
				if newID, err = zid.SuggestForDay(date); err != nil {
					return err
				}
			}

			n.SetID(newID)
			replacements = append(replacements, replacement{oldID: oldID, newID: newID})
		}

		newName := note.EscapeFilename(strings.TrimSpace(n.ID()+" "+title)) + opts.extension
		if n.Filename() != newName {
			fmt.Fprintf(out, "- Renaming %s --> %s\n", n.Filename(), newName)
			if _, err := n.RenameFile(newName); err != nil {
				return err
			}
		}
	}

	printReplacements(out, replacements)
	return nil
}

// printReplacements emits one shell line per changed ID, rewriting
// references in the rest of the vault.
func printReplacements(out io.Writer, replacements []replacement) {
	for _, r := range replacements {
		fmt.Fprintf(
			out,
			"grep -FirlZ '%s' | xargs -0 sed -i 's/%s/%s/g'\n",
			r.oldID,
			r.oldID,
			r.newID,
		)
	}
}
