package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHomeScreen(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		return m.navigate(screenChat)
	case "d":
		return m.navigate(screenDocuments)
	case "p":
		m.probeStatus = "checking..."
		return m, m.conv.Probe()
	case "l":
		m.sess.Logout()
		return m.navigate(screenLogin)
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) viewHomeScreen() string {
	var b strings.Builder
	b.WriteString("\n  " + m.styles.Title.Render("RAG Assistant") + "\n\n")

	if user := m.sess.CurrentUser(); user != nil {
		name := user.Email
		if user.FullName != nil && *user.FullName != "" {
			name = *user.FullName
		}
		b.WriteString(fmt.Sprintf("  Signed in as %s\n\n", m.styles.Question.Render(name)))
	}

	b.WriteString("  [c] Chat with your documents\n")
	b.WriteString("  [d] Document management\n")
	b.WriteString("  [p] Check backend connectivity\n")
	b.WriteString("  [l] Sign out\n")
	b.WriteString("  [q] Quit\n\n")

	if m.probeStatus != "" {
		b.WriteString("  " + m.styles.Subtle.Render("backend: "+m.probeStatus) + "\n\n")
	}
	if m.advisory != "" {
		b.WriteString("  " + m.styles.Notice.Render(m.advisory) + "\n\n")
	}
	return b.String()
}
