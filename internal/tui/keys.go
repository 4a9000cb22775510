package tui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/pgman/internal/keybinds"
)

// handleKeyPress dispatches keys by precedence: force quit, then the popup
// layer, then the input mode.
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.cleanupOnQuit()
		return tea.Quit
	}

	if m.popup.Kind != PopupHidden {
		return m.handlePopupKeys(msg)
	}

	if m.mode == ModeEditing {
		return m.handleEditingKeys(msg)
	}

	return m.handleNormalKeys(msg)
}

func (m *Model) cleanupOnQuit() {
	if m.xfer != nil {
		m.xfer.cleanup()
		m.xfer = nil
	}
}

// handlePopupKeys handles keys while a popup is visible. Only the popup's
// own keys and quit are honored; everything else is swallowed.
func (m *Model) handlePopupKeys(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	switch m.popup.Kind {
	case PopupConfirmRestore:
		action, ok := m.keybinds.Match(keybinds.ContextConfirm, key)
		if !ok {
			return nil
		}
		switch action {
		case keybinds.ActionConfirm:
			return m.confirmRestore()
		case keybinds.ActionCancel:
			m.popup = Popup{}
		case keybinds.ActionQuit, keybinds.ActionQuitForce:
			return tea.Quit
		}

	case PopupDownloading:
		switch key {
		case "esc":
			// The fetch may still be opening; there is nothing to pause yet.
			t := m.xfer
			if t == nil {
				return nil
			}
			m.popup = Popup{Kind: PopupConfirmCancel, Progress: t.progress(), Rate: t.rate}
		case "q":
			m.cleanupOnQuit()
			return tea.Quit
		}

	case PopupConfirmCancel:
		action, ok := m.keybinds.Match(keybinds.ContextConfirm, key)
		if !ok {
			return nil
		}
		switch action {
		case keybinds.ActionConfirm:
			t := m.xfer
			t.cancelConfirmed = true
			if !t.pending {
				m.abortDownload()
			}
			// A chunk is still in flight; the abort happens when it lands.
		case keybinds.ActionCancel:
			t := m.xfer
			t.resetRateBaseline(time.Now())
			// Resume showing the values captured when the prompt opened;
			// the next chunk refreshes them.
			m.popup = Popup{Kind: PopupDownloading, Progress: m.popup.Progress, Rate: m.popup.Rate}
			if !t.pending {
				t.pending = true
				return readChunkCmd(t)
			}
		case keybinds.ActionQuit, keybinds.ActionQuitForce:
			m.cleanupOnQuit()
			return tea.Quit
		}

	case PopupError, PopupConnTest:
		action, ok := m.keybinds.Match(keybinds.ContextModal, key)
		if !ok {
			return nil
		}
		switch action {
		case keybinds.ActionCloseModal:
			m.popup = Popup{}
		case keybinds.ActionQuit, keybinds.ActionQuitForce:
			return tea.Quit
		}

	case PopupSuccess:
		// Dismissing the success popup ends the session early; the
		// result is already recorded.
		action, ok := m.keybinds.Match(keybinds.ContextModal, key)
		if !ok {
			return nil
		}
		switch action {
		case keybinds.ActionCloseModal, keybinds.ActionQuit, keybinds.ActionQuitForce:
			return tea.Quit
		}
	}

	return nil
}

// confirmRestore starts the download of the selected snapshot.
func (m *Model) confirmRestore() tea.Cmd {
	if m.store == nil {
		m.popup = Popup{Kind: PopupError, Message: "S3 client not initialized"}
		return nil
	}
	if m.selected < 0 || m.selected >= len(m.snapshots) {
		m.popup = Popup{}
		return nil
	}
	snap := m.snapshots[m.selected]
	m.logger.Debug("starting download", "key", snap.Key, "size", snap.Size)
	m.popup = Popup{Kind: PopupDownloading}
	return m.startDownloadCmd(snap)
}

// handleNormalKeys handles keys in normal mode
func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextNormal, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		return tea.Quit

	case keybinds.ActionNextField:
		m.focus = m.focus.Next()

	case keybinds.ActionEdit:
		m.beginEdit()

	case keybinds.ActionRefresh:
		return m.reloadSnapshots(false)

	case keybinds.ActionTest:
		return m.testFocusedPanel()

	case keybinds.ActionSelect:
		if m.focus == FieldSnapshotList && m.selected >= 0 && m.selected < len(m.snapshots) {
			m.popup = Popup{Kind: PopupConfirmRestore}
		}

	case keybinds.ActionNavigateUp:
		if m.focus == FieldSnapshotList {
			m.moveSelection(-1)
		}

	case keybinds.ActionNavigateDown:
		if m.focus == FieldSnapshotList {
			m.moveSelection(1)
		}

	case keybinds.ActionFocusBucket:
		m.focus = FieldBucket
	case keybinds.ActionFocusRegion:
		m.focus = FieldRegion
	case keybinds.ActionFocusPrefix:
		m.focus = FieldPrefix
	case keybinds.ActionFocusEndpoint:
		m.focus = FieldEndpoint
	case keybinds.ActionFocusAccessKey:
		m.focus = FieldAccessKey
	case keybinds.ActionFocusSecretKey:
		m.focus = FieldSecretKey
	case keybinds.ActionFocusDBHost:
		m.focus = FieldDBHost
	case keybinds.ActionFocusDBPort:
		m.focus = FieldDBPort
	case keybinds.ActionFocusDBUsername:
		m.focus = FieldDBUsername
	case keybinds.ActionFocusDBPassword:
		m.focus = FieldDBPassword
	case keybinds.ActionFocusDBSSL:
		m.focus = FieldDBSSL
	case keybinds.ActionFocusDBName:
		m.focus = FieldDBName
	}

	return nil
}

// handleEditingKeys handles keys while editing a field value
func (m *Model) handleEditingKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.commitEdit()
	case "esc":
		m.cancelEdit()
		return nil
	}

	// Handle text input with cursor support
	if _, shouldContinue := handleTextInputWithCursor(&m.editValue, &m.editCursor, msg); shouldContinue {
		return nil
	}

	// Insert at cursor position; KeyRunes covers multi-byte input
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		text := msg.String()
		m.editValue = m.editValue[:m.editCursor] + text + m.editValue[m.editCursor:]
		m.editCursor += len(text)
	}

	return nil
}

// handleTextInputWithCursor handles text input with cursor position support
// Returns: modified (bool), shouldContinue (bool)
func handleTextInputWithCursor(input *string, cursorPos *int, msg tea.KeyMsg) (modified bool, shouldContinue bool) {
	// Ensure cursor position is valid
	if *cursorPos < 0 {
		*cursorPos = 0
	}
	if *cursorPos > len(*input) {
		*cursorPos = len(*input)
	}

	switch msg.String() {
	case "left":
		if *cursorPos > 0 {
			*cursorPos--
		}
		return true, true

	case "right":
		if *cursorPos < len(*input) {
			*cursorPos++
		}
		return true, true

	case "home", "ctrl+a":
		*cursorPos = 0
		return true, true

	case "end", "ctrl+e":
		*cursorPos = len(*input)
		return true, true

	case "ctrl+v", "shift+insert", "super+v":
		// Paste from clipboard at cursor position
		if text, err := clipboard.ReadAll(); err == nil {
			*input = (*input)[:*cursorPos] + text + (*input)[*cursorPos:]
			*cursorPos += len(text)
			return true, true
		}
		return false, true

	case "ctrl+k":
		// Clear input
		if *input != "" {
			*input = ""
			*cursorPos = 0
			return true, true
		}
		return false, true

	case "backspace":
		if *cursorPos > 0 {
			*input = (*input)[:*cursorPos-1] + (*input)[*cursorPos:]
			*cursorPos--
			return true, true
		}
		return false, true

	case "delete":
		if *cursorPos < len(*input) {
			*input = (*input)[:*cursorPos] + (*input)[*cursorPos+1:]
			return true, true
		}
		return false, true
	}

	return false, false
}
