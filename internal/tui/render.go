package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/pgman/internal/keybinds"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// View renders the full screen
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	main := m.renderMain()

	if m.popup.Kind != PopupHidden {
		return m.renderPopup()
	}

	return main
}

func (m *Model) renderMain() string {
	panelWidth := (m.width - 6) / 2
	if panelWidth < 30 {
		panelWidth = 30
	}

	s3Panel := m.renderPanelBox("S3 Settings", m.renderStorePanel(), panelWidth, m.focus.isS3())
	pgPanel := m.renderPanelBox("PostgreSQL Settings", m.renderDBPanel(), panelWidth, m.focus.isDB())

	settings := lipgloss.JoinHorizontal(lipgloss.Top, s3Panel, pgPanel)

	listHeight := m.height - lipgloss.Height(settings) - 4
	if listHeight < 3 {
		listHeight = 3
	}
	list := m.renderPanelBox("Snapshots", m.renderSnapshotList(listHeight), m.width-4, m.focus == FieldSnapshotList)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styleTitle.Render("PostgreSQL S3 Backup Manager"),
		settings,
		list,
		m.renderHelp(),
	)
}

func (m *Model) renderPanelBox(title, content string, width int, focused bool) string {
	borderColor := colorGray
	if focused {
		borderColor = colorGreen
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(width).
		Padding(0, 1).
		Render(styleTitle.Render(title) + "\n" + content)
}

func (m *Model) renderStorePanel() string {
	var b strings.Builder
	b.WriteString(m.renderField(FieldBucket, "Bucket", m.storeCfg.Bucket, false))
	b.WriteString(m.renderField(FieldRegion, "Region", m.storeCfg.Region, false))
	b.WriteString(m.renderField(FieldPrefix, "Prefix", m.storeCfg.Prefix, false))
	b.WriteString(m.renderField(FieldEndpoint, "Endpoint", m.storeCfg.EndpointURL, false))
	b.WriteString(m.renderField(FieldAccessKey, "Access Key", m.storeCfg.AccessKeyID, false))
	b.WriteString(m.renderField(FieldSecretKey, "Secret Key", m.storeCfg.SecretAccessKey, true))
	b.WriteString(m.renderField(FieldPathStyle, "Path Style", strconv.FormatBool(m.storeCfg.PathStyle), false))
	if m.storeCfg.ErrorMessage != "" {
		b.WriteString(styleError.Render(m.storeCfg.ErrorMessage) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderDBPanel() string {
	port := ""
	if m.dbCfg.Port != 0 {
		port = strconv.Itoa(m.dbCfg.Port)
	}
	var b strings.Builder
	b.WriteString(m.renderField(FieldDBHost, "Host", m.dbCfg.Host, false))
	b.WriteString(m.renderField(FieldDBPort, "Port", port, false))
	b.WriteString(m.renderField(FieldDBUsername, "Username", m.dbCfg.Username, false))
	b.WriteString(m.renderField(FieldDBPassword, "Password", m.dbCfg.Password, true))
	b.WriteString(m.renderField(FieldDBSSL, "Use SSL", strconv.FormatBool(m.dbCfg.UseSSL), false))
	b.WriteString(m.renderField(FieldDBName, "Database", m.dbCfg.DBName, false))
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderField(field FocusField, label, value string, masked bool) string {
	display := value
	if masked {
		display = maskSecret(value)
	}

	if m.focus == field && m.mode == ModeEditing {
		display = m.editValue[:m.editCursor] + "█" + m.editValue[m.editCursor:]
	}

	line := fmt.Sprintf("%-11s %s", label+":", display)
	if m.focus == field {
		return styleSelected.Render(line) + "\n"
	}
	return line + "\n"
}

// maskSecret hides a credential while keeping it recognizable. Short
// values are fully starred; longer values keep the first and last four
// characters.
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + "....." + value[len(value)-4:]
}

func (m *Model) renderSnapshotList(height int) string {
	if len(m.snapshots) == 0 {
		return styleSubtle.Render("No snapshots found")
	}

	// Keep the selection visible when the list overflows
	start := 0
	if m.selected >= height {
		start = m.selected - height + 1
	}

	var lines []string
	for i := start; i < len(m.snapshots) && i < start+height; i++ {
		snap := m.snapshots[i]
		line := fmt.Sprintf("%s - %.2f MB - %s",
			snap.Key,
			float64(snap.Size)/(1024*1024),
			snap.LastModified.Format("2006-01-02 15:04:05"))
		if i == m.selected {
			line = styleSelected.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHelp() string {
	if m.mode == ModeEditing {
		return styleSubtle.Render("enter: save | esc: cancel | ctrl+v: paste")
	}
	r := m.keybinds
	items := []string{
		r.GetBindingString(keybinds.ContextNormal, keybinds.ActionQuit) + ": quit",
		r.GetBindingString(keybinds.ContextNormal, keybinds.ActionNextField) + ": next field",
		r.GetBindingString(keybinds.ContextNormal, keybinds.ActionEdit) + ": edit",
		r.GetBindingString(keybinds.ContextNormal, keybinds.ActionRefresh) + ": refresh",
		r.GetBindingString(keybinds.ContextNormal, keybinds.ActionTest) + ": test connection",
		r.GetBindingString(keybinds.ContextNormal, keybinds.ActionSelect) + ": restore",
		"j/k: navigate",
	}
	return styleSubtle.Render(strings.Join(items, " | "))
}
