package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/salmacher/Rag-project/internal/api"
	"github.com/salmacher/Rag-project/internal/documents"
)

func (m Model) updateDocumentsScreen(msg tea.KeyMsg) (Model, tea.Cmd) {
	// A pending deletion captures y/n/esc until resolved or cancelled.
	if pd := m.docs.Pending(); pd != nil {
		switch msg.String() {
		case "y", "enter":
			if pd.State == documents.DeletionAwaitingConfirmation {
				return m, tea.Batch(m.spinner.Tick, m.docs.ConfirmDelete())
			}
		case "n", "esc":
			m.docs.CancelDelete()
		}
		return m, nil
	}

	if m.mode == docUploadPrompt {
		switch msg.Type {
		case tea.KeyEsc:
			m.mode = docBrowse
			m.pathInput.Reset()
			return m, nil
		case tea.KeyEnter:
			path := strings.TrimSpace(m.pathInput.Value())
			m.mode = docBrowse
			m.pathInput.Reset()
			return m, tea.Batch(m.spinner.Tick, m.docs.Upload(path))
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		return m.navigate(screenHome)
	case "up", "k":
		if m.docCursor > 0 {
			m.docCursor--
		}
	case "down", "j":
		if m.docCursor < len(m.docs.Items())-1 {
			m.docCursor++
		}
	case "left", "h":
		m.docCursor = 0
		return m, m.docs.PrevPage()
	case "right", "l":
		m.docCursor = 0
		return m, m.docs.NextPage()
	case "r":
		return m, tea.Batch(m.spinner.Tick, m.docs.Invalidate())
	case "u":
		m.mode = docUploadPrompt
		m.pathInput.Focus()
		return m, nil
	case "d", "x":
		if items := m.docs.Items(); m.docCursor < len(items) {
			m.docs.RequestDelete(items[m.docCursor])
		}
	case "ctrl+d":
		m.docs.DismissAdvisory()
	}
	return m, nil
}

func (m Model) viewDocumentsScreen() string {
	var b strings.Builder
	b.WriteString("\n  " + m.styles.Title.Render(fmt.Sprintf("Documents (%d)", m.docs.TotalCount())) + "\n\n")

	items := m.docs.Items()
	if len(items) == 0 && !m.docs.Loading() {
		b.WriteString("  " + m.styles.Subtle.Render("No documents uploaded yet — press u to upload your first document") + "\n")
	}

	for i, doc := range items {
		cursor := "  "
		line := fmt.Sprintf("%-40s %10s %-12s %s",
			snippet(doc.Title, 40), formatFileSize(doc.FileSize), fileTypeLabel(doc.FileType), statusLabel(m.styles, doc.Processed))
		if i == m.docCursor {
			cursor = m.styles.Selected.Render("> ")
			line = m.styles.Selected.Render(line)
		}
		b.WriteString("  " + cursor + line + "\n")
	}

	b.WriteString("\n  " + m.styles.Subtle.Render(fmt.Sprintf("page %d/%d", m.docs.PageIndex()+1, m.docs.TotalPages())))
	if m.docs.Loading() {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n")

	if up := m.docs.LastUpload(); up != nil {
		b.WriteString("  " + m.styles.Notice.Render(fmt.Sprintf("%s: %s (%d chunks)", up.Filename, up.Message, up.ChunksCreated)) + "\n")
	}
	if adv := m.docs.Advisory(); adv != nil {
		b.WriteString("  " + m.styles.Error.Render(api.Detail(adv)) + m.styles.Help.Render("  (ctrl+d to dismiss)") + "\n")
	}

	if pd := m.docs.Pending(); pd != nil {
		if pd.State == documents.DeletionInProgress {
			b.WriteString("\n  " + m.styles.Notice.Render(fmt.Sprintf("Deleting %q...", pd.Target.Title)) + "\n")
		} else {
			b.WriteString("\n  " + m.styles.Notice.Render(fmt.Sprintf("Delete %q? This cannot be undone.", pd.Target.Title)) + "\n")
			b.WriteString("  " + m.styles.Help.Render("y: delete • n: cancel") + "\n")
		}
		return b.String()
	}

	if m.mode == docUploadPrompt {
		b.WriteString("\n  " + m.pathInput.View() + "\n")
		b.WriteString("  " + m.styles.Help.Render("enter: upload • esc: cancel"))
		return b.String()
	}

	b.WriteString("\n  " + m.styles.Help.Render("↑/↓: select • ←/→: page • u: upload • d: delete • r: refresh • esc: menu"))
	return b.String()
}

func statusLabel(st Styles, processed bool) string {
	if processed {
		return st.Processed.Render("processed")
	}
	return st.Pending.Render("pending")
}

func fileTypeLabel(fileType *string) string {
	if fileType == nil || *fileType == "" {
		return "UNKNOWN"
	}
	parts := strings.Split(*fileType, "/")
	return strings.ToUpper(parts[len(parts)-1])
}

func formatFileSize(bytes *int64) string {
	if bytes == nil || *bytes <= 0 {
		return "0 KB"
	}
	b := *bytes
	switch {
	case b < 1024:
		return fmt.Sprintf("%d B", b)
	case b < 1024*1024:
		return fmt.Sprintf("%d KB", b/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(b)/(1024*1024))
	}
}
