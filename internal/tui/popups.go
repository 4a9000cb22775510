package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) renderPopup() string {
	switch m.popup.Kind {
	case PopupConfirmRestore:
		return m.renderConfirmRestore()
	case PopupDownloading:
		return m.renderDownloading()
	case PopupConfirmCancel:
		return m.renderConfirmCancel()
	case PopupError:
		return m.renderMessagePopup(styleError.Render("Error"), m.popup.Message, "esc/enter: dismiss")
	case PopupSuccess:
		return m.renderMessagePopup(styleSuccess.Render("Success"), m.popup.Message, "")
	case PopupConnTest:
		return m.renderConnTest()
	}
	return ""
}

func (m *Model) renderConfirmRestore() string {
	key := ""
	if m.selected >= 0 && m.selected < len(m.snapshots) {
		key = m.snapshots[m.selected].Key
	}
	body := fmt.Sprintf("Download and restore %s?", key)
	return m.renderMessagePopup(styleWarning.Render("Confirm Restore"), body, "y: confirm | n/esc: cancel")
}

func (m *Model) renderDownloading() string {
	var content strings.Builder
	if m.xfer != nil {
		content.WriteString(m.xfer.snapshot.Key + "\n\n")
	}
	content.WriteString(renderProgressBar(m.popup.Progress) + "\n")
	content.WriteString(fmt.Sprintf("%.1f%%  %s", m.popup.Progress*100, formatRate(m.popup.Rate)))
	return m.renderMessagePopup(styleTitle.Render("Downloading"), content.String(), "esc: cancel")
}

func (m *Model) renderConfirmCancel() string {
	var content strings.Builder
	content.WriteString("Cancel the download in progress?\n\n")
	content.WriteString(renderProgressBar(m.popup.Progress) + "\n")
	content.WriteString(fmt.Sprintf("%.1f%%  %s", m.popup.Progress*100, formatRate(m.popup.Rate)))
	return m.renderMessagePopup(styleWarning.Render("Cancel Download"), content.String(), "y: abort | n: keep going")
}

func (m *Model) renderConnTest() string {
	title := "S3 Connection Test"
	if m.popup.Provider == providerDatabase {
		title = "PostgreSQL Connection Test"
	}
	return m.renderMessagePopup(styleTitle.Render(title), m.modalViewport.View(), "esc/enter: dismiss")
}

func (m *Model) renderMessagePopup(title, body, footer string) string {
	modalWidth := m.width - 10
	if modalWidth > 70 {
		modalWidth = 70
	}
	if modalWidth < 20 {
		modalWidth = 20
	}

	var content strings.Builder
	content.WriteString(title + "\n\n")
	content.WriteString(body)
	if footer != "" {
		content.WriteString("\n\n" + styleSubtle.Render(footer))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Width(modalWidth).
		Padding(0, 1).
		Render(content.String())

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}

func renderProgressBar(progress float64) string {
	barWidth := 40
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func formatRate(bytesPerSec float64) string {
	switch {
	case bytesPerSec >= 1024*1024:
		return fmt.Sprintf("%.2f MB/s", bytesPerSec/(1024*1024))
	case bytesPerSec >= 1024:
		return fmt.Sprintf("%.2f KB/s", bytesPerSec/1024)
	default:
		return fmt.Sprintf("%.0f B/s", bytesPerSec)
	}
}
