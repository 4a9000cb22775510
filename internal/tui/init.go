package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/pgman/internal/keybinds"
	"github.com/studiowebux/pgman/internal/pgdb"
	"github.com/studiowebux/pgman/internal/s3store"
)

// New creates a new browser model
func New(storeCfg *s3store.Config, dbCfg *pgdb.Config, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Model{
		storeCfg: storeCfg,
		dbCfg:    dbCfg,
		connect: func(ctx context.Context, cfg *s3store.Config) (s3store.Store, error) {
			return s3store.Connect(ctx, *cfg)
		},
		testDB:        pgdb.TestConnection,
		selected:      -1,
		focus:         FieldSnapshotList,
		mode:          ModeNormal,
		keybinds:      keybinds.NewDefaultRegistry(),
		modalViewport: viewport.New(80, 20),
		logger:        logger,
	}
}

// Init kicks off the initial snapshot listing. Failures here are rendered
// inline rather than as a popup so an unconfigured session starts clean.
func (m *Model) Init() tea.Cmd {
	return m.reloadSnapshots(true)
}

// Run starts the browser and blocks until it exits. A non-nil Result means
// a snapshot was downloaded and is waiting on disk.
func Run(storeCfg *s3store.Config, dbCfg *pgdb.Config, logger *slog.Logger) (*Result, error) {
	m := New(storeCfg, dbCfg, logger)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	if fm, ok := final.(*Model); ok {
		return fm.Result(), nil
	}
	return m.Result(), nil
}
