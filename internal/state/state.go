// Package state wires the loaded configuration and the compiled
// parser into one value handed to every command constructor.
package state

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/katalorg/katalorg/internal/collection"
	"github.com/katalorg/katalorg/internal/config"
	"github.com/katalorg/katalorg/internal/note"
	"github.com/katalorg/katalorg/internal/parser"
)

type State struct {
	Config *config.Config
	Parser *parser.NoteParser
	Home   string
}

// NewState loads the config below home (the user home dir when empty)
// and compiles the parser for it.
func NewState(home string) (*State, error) {
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		home = userHome
	}

	if err := config.EnsureConfigExists(home); err != nil {
		return nil, err
	}

	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}

	p, err := parser.New(cfg.Parser)
	if err != nil {
		return nil, err
	}

	return &State{
		Config: cfg,
		Parser: p,
		Home:   home,
	}, nil
}

// NoteFactory returns the factory collections use to load notes with
// this state's parser.
func (s *State) NoteFactory() collection.NoteFactory {
	return func(file *note.File) (*note.Note, error) {
		return note.Load(file, s.Parser)
	}
}

// ResolveVault picks the note tree for a run: an explicit argument
// wins, then the vaultdir key (the --vault flag when set, else the
// config file), then the working directory.
func (s *State) ResolveVault(arg string) (string, error) {
	path := arg
	if path == "" {
		path = viper.GetString("vaultdir")
	}
	if path == "" {
		path = s.Config.VaultDir
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
		path = wd
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no such directory: %s", path)
	}

	return path, nil
}
