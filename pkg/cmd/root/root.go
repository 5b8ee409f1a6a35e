package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalorg/katalorg/internal/constants"
	"github.com/katalorg/katalorg/internal/state"
	"github.com/katalorg/katalorg/pkg/cmd/backlinks"
	"github.com/katalorg/katalorg/pkg/cmd/generate"
	"github.com/katalorg/katalorg/pkg/cmd/rename"
)

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "katalorg",
		Aliases: []string{"kat"},
		Short:   "Keep the backlinks in a zettelkasten note tree up to date.",
		Long: heredoc.Doc(`
			katalorg maintains a directory tree of Markdown notes: it keeps
			every note's generated backlinks section in sync with the notes
			that link to it, suggests fresh timestamp identifiers, and
			renames note files to the canonical "<id> <title>" form.
		`),
		Version: constants.Version,
	}

	cmd.PersistentFlags().
		StringVar(&s.Config.VaultDir, "vault", s.Config.VaultDir, "note vault directory (default: working directory)")
	viper.BindPFlag("vaultdir", cmd.PersistentFlags().Lookup("vault"))

	cmd.AddCommand(
		backlinks.NewCmdBacklinks(s),
		generate.NewCmdGenerate(s),
		rename.NewCmdRename(s),
	)

	return cmd, nil
}
