package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/pgman/internal/keybinds"
	"github.com/studiowebux/pgman/internal/pgdb"
	"github.com/studiowebux/pgman/internal/s3store"
)

// InputMode represents the current input handling mode
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeEditing
)

// FocusField identifies the widget that receives navigation and edit keys.
// The tab order follows the declaration order and wraps around.
type FocusField int

const (
	FieldSnapshotList FocusField = iota
	FieldBucket
	FieldRegion
	FieldPrefix
	FieldEndpoint
	FieldAccessKey
	FieldSecretKey
	FieldPathStyle
	FieldDBHost
	FieldDBPort
	FieldDBUsername
	FieldDBPassword
	FieldDBSSL
	FieldDBName

	fieldCount
)

// Next returns the field after f in the tab cycle.
func (f FocusField) Next() FocusField {
	return (f + 1) % fieldCount
}

func (f FocusField) isS3() bool {
	return f >= FieldBucket && f <= FieldPathStyle
}

func (f FocusField) isDB() bool {
	return f >= FieldDBHost && f <= FieldDBName
}

// PopupKind identifies which popup, if any, is covering the main view
type PopupKind int

const (
	PopupHidden PopupKind = iota
	PopupConfirmRestore
	PopupDownloading
	PopupConfirmCancel
	PopupError
	PopupSuccess
	PopupConnTest
)

// Popup holds the state of the popup layer. Progress and Rate are only
// meaningful for PopupDownloading and PopupConfirmCancel, Provider only
// for PopupConnTest.
type Popup struct {
	Kind     PopupKind
	Progress float64
	Rate     float64 // bytes per second
	Message  string
	Provider string // "store" or "database"
}

// Result describes a completed download, handed back to the caller when
// the program exits.
type Result struct {
	ArtifactPath string
	SnapshotKey  string
	SizeBytes    int64
	Duration     time.Duration
}

// ConnectFunc builds a snapshot store from settings. Injected so tests can
// substitute a fake.
type ConnectFunc func(ctx context.Context, cfg *s3store.Config) (s3store.Store, error)

// TestDBFunc checks database connectivity.
type TestDBFunc func(ctx context.Context, cfg *pgdb.Config) error

// Model is the main application model for the snapshot browser
type Model struct {
	storeCfg *s3store.Config
	dbCfg    *pgdb.Config

	store   s3store.Store
	connect ConnectFunc
	testDB  TestDBFunc

	snapshots []s3store.Snapshot
	selected  int // -1 when nothing is selected

	focus FocusField
	mode  InputMode
	popup Popup

	editValue  string
	editCursor int

	xfer   *transfer
	result *Result

	keybinds      *keybinds.Registry
	modalViewport viewport.Model

	width  int
	height int

	logger *slog.Logger
}

// Messages

type snapshotsLoadedMsg struct {
	snapshots []s3store.Snapshot
	err       error
	quiet     bool
}

type downloadStartedMsg struct {
	xfer *transfer
	err  error
}

type downloadChunkMsg struct {
	n   int
	err error
}

type successTimeoutMsg struct{}

type connTestMsg struct {
	provider string
	err      error
}

// Update handles all messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.modalViewport.Width = msg.Width - 10
		m.modalViewport.Height = msg.Height - 10
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case snapshotsLoadedMsg:
		m.applySnapshots(msg)
		return m, nil

	case downloadStartedMsg:
		return m, m.handleDownloadStarted(msg)

	case downloadChunkMsg:
		return m, m.handleDownloadChunk(msg)

	case successTimeoutMsg:
		if m.popup.Kind == PopupSuccess {
			return m, tea.Quit
		}
		return m, nil

	case connTestMsg:
		m.applyConnTest(msg)
		return m, nil
	}

	return m, nil
}

func (m *Model) applyConnTest(msg connTestMsg) {
	label := "S3 connection"
	if msg.provider == providerDatabase {
		label = "PostgreSQL connection"
	}
	if msg.err != nil {
		m.popup = Popup{
			Kind:     PopupConnTest,
			Provider: msg.provider,
			Message:  label + " failed: " + msg.err.Error(),
		}
	} else {
		m.popup = Popup{
			Kind:     PopupConnTest,
			Provider: msg.provider,
			Message:  label + " successful",
		}
	}
	m.modalViewport.SetContent(m.popup.Message)
	m.modalViewport.GotoTop()
}

// Result returns the completed download, if any.
func (m *Model) Result() *Result {
	return m.result
}
