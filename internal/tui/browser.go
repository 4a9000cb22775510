package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	providerStore    = "store"
	providerDatabase = "database"
)

// ensureStore lazily builds the store client from the current settings.
func (m *Model) ensureStore() error {
	if m.store != nil {
		return nil
	}
	if err := m.storeCfg.Validate(); err != nil {
		return err
	}
	store, err := m.connect(context.Background(), m.storeCfg)
	if err != nil {
		return err
	}
	m.store = store
	return nil
}

// reloadSnapshots returns a command that lists the bucket. Quiet reloads
// (startup, after a field edit) keep failures out of the popup layer and
// surface them inline instead; an explicit refresh reports with a popup.
func (m *Model) reloadSnapshots(quiet bool) tea.Cmd {
	if err := m.ensureStore(); err != nil {
		m.logger.Debug("store unavailable", "error", err)
		m.storeCfg.ErrorMessage = err.Error()
		if !quiet {
			m.popup = Popup{Kind: PopupError, Message: err.Error()}
		}
		return nil
	}

	store := m.store
	bucket := m.storeCfg.Bucket
	prefix := m.storeCfg.Prefix
	return func() tea.Msg {
		snapshots, err := store.List(context.Background(), bucket, prefix)
		return snapshotsLoadedMsg{snapshots: snapshots, err: err, quiet: quiet}
	}
}

func (m *Model) applySnapshots(msg snapshotsLoadedMsg) {
	if msg.err != nil {
		m.logger.Debug("failed to list snapshots", "error", msg.err)
		if msg.quiet {
			m.storeCfg.ErrorMessage = msg.err.Error()
		} else {
			m.popup = Popup{Kind: PopupError, Message: msg.err.Error()}
		}
		return
	}
	m.storeCfg.ErrorMessage = ""
	m.snapshots = msg.snapshots
	m.clampSelection()
}

func (m *Model) clampSelection() {
	if len(m.snapshots) == 0 {
		m.selected = -1
		return
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(m.snapshots) {
		m.selected = len(m.snapshots) - 1
	}
}

func (m *Model) moveSelection(delta int) {
	if len(m.snapshots) == 0 {
		return
	}
	if m.selected < 0 {
		if delta > 0 {
			m.selected = 0
		} else {
			m.selected = len(m.snapshots) - 1
		}
		return
	}
	m.selected += delta
	m.clampSelection()
}

// beginEdit enters editing mode with the focused field's current value.
// The snapshot list is not editable.
func (m *Model) beginEdit() {
	if m.focus == FieldSnapshotList || m.mode == ModeEditing {
		return
	}
	m.mode = ModeEditing
	m.editValue = m.fieldValue(m.focus)
	m.editCursor = len(m.editValue)
}

func (m *Model) fieldValue(f FocusField) string {
	switch f {
	case FieldBucket:
		return m.storeCfg.Bucket
	case FieldRegion:
		return m.storeCfg.Region
	case FieldPrefix:
		return m.storeCfg.Prefix
	case FieldEndpoint:
		return m.storeCfg.EndpointURL
	case FieldAccessKey:
		return m.storeCfg.AccessKeyID
	case FieldSecretKey:
		return m.storeCfg.SecretAccessKey
	case FieldPathStyle:
		return strconv.FormatBool(m.storeCfg.PathStyle)
	case FieldDBHost:
		return m.dbCfg.Host
	case FieldDBPort:
		if m.dbCfg.Port == 0 {
			return ""
		}
		return strconv.Itoa(m.dbCfg.Port)
	case FieldDBUsername:
		return m.dbCfg.Username
	case FieldDBPassword:
		return m.dbCfg.Password
	case FieldDBSSL:
		return strconv.FormatBool(m.dbCfg.UseSSL)
	case FieldDBName:
		return m.dbCfg.DBName
	}
	return ""
}

// commitEdit writes the edit buffer back to the focused field and leaves
// editing mode. Changing a store field other than prefix drops the cached
// client so the next listing reconnects with the new settings.
func (m *Model) commitEdit() tea.Cmd {
	m.mode = ModeNormal
	value := m.editValue
	m.editValue = ""
	m.editCursor = 0

	switch m.focus {
	case FieldBucket:
		m.setStoreField(&m.storeCfg.Bucket, value)
	case FieldRegion:
		m.setStoreField(&m.storeCfg.Region, value)
	case FieldPrefix:
		m.storeCfg.Prefix = value
	case FieldEndpoint:
		m.setStoreField(&m.storeCfg.EndpointURL, value)
	case FieldAccessKey:
		m.setStoreField(&m.storeCfg.AccessKeyID, value)
	case FieldSecretKey:
		m.setStoreField(&m.storeCfg.SecretAccessKey, value)
	case FieldPathStyle:
		next := strings.EqualFold(value, "true")
		if next != m.storeCfg.PathStyle {
			m.storeCfg.PathStyle = next
			m.store = nil
		}
	case FieldDBHost:
		m.dbCfg.Host = value
	case FieldDBPort:
		if value == "" {
			m.dbCfg.Port = 0
			return nil
		}
		port, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			m.popup = Popup{Kind: PopupError, Message: "Invalid port number"}
			return nil
		}
		m.dbCfg.Port = int(port)
	case FieldDBUsername:
		m.dbCfg.Username = value
	case FieldDBPassword:
		m.dbCfg.Password = value
	case FieldDBSSL:
		m.dbCfg.UseSSL = strings.EqualFold(value, "true")
	case FieldDBName:
		m.dbCfg.DBName = value
	}

	if m.focus.isS3() {
		return m.reloadSnapshots(true)
	}
	return nil
}

func (m *Model) setStoreField(dst *string, value string) {
	if *dst == value {
		return
	}
	*dst = value
	m.store = nil
}

func (m *Model) cancelEdit() {
	m.mode = ModeNormal
	m.editValue = ""
	m.editCursor = 0
}

// testFocusedPanel checks connectivity for whichever panel holds focus.
func (m *Model) testFocusedPanel() tea.Cmd {
	switch {
	case m.focus.isS3():
		cfg := *m.storeCfg
		connect := m.connect
		return func() tea.Msg {
			store, err := connect(context.Background(), &cfg)
			if err == nil {
				_, err = store.BucketNames(context.Background())
			}
			return connTestMsg{provider: providerStore, err: err}
		}
	case m.focus.isDB():
		cfg := *m.dbCfg
		test := m.testDB
		return func() tea.Msg {
			return connTestMsg{provider: providerDatabase, err: test(context.Background(), &cfg)}
		}
	}
	return nil
}
