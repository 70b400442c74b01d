package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/salmacher/Rag-project/internal/api"
	"github.com/salmacher/Rag-project/internal/chat"
)

// searchPrefix turns an input line into a similarity search instead of a
// question.
const searchPrefix = "/search "

func (m Model) updateChatScreen(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.navigate(screenHome)
	case tea.KeyCtrlD:
		m.conv.DismissAdvisory()
		return m, nil
	case tea.KeyEnter:
		input := m.chatInput.Value()
		if strings.HasPrefix(input, searchPrefix) {
			m.chatInput.Reset()
			return m, m.conv.SearchSimilar(strings.TrimPrefix(input, searchPrefix), 10)
		}
		cmd := m.conv.Submit(input)
		if cmd == nil {
			// Blank question, or an exchange is already pending.
			return m, nil
		}
		m.chatInput.Reset()
		m.refreshChatView()
		return m, tea.Batch(m.spinner.Tick, cmd)
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// refreshChatView re-renders the conversation into the viewport.
func (m *Model) refreshChatView() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	exchanges := m.conv.Exchanges()
	if len(exchanges) == 0 && m.lastSearch == nil {
		return m.styles.Subtle.Render("Ask a question to start the conversation")
	}

	var b strings.Builder
	for i := range exchanges {
		ex := &exchanges[i]
		b.WriteString(m.styles.Question.Render("You: "+ex.Question) + "\n")
		b.WriteString(m.styles.Subtle.Render(ex.Timestamp.Format("15:04:05")) + "\n")

		switch ex.State {
		case chat.StatePending:
			b.WriteString(m.spinner.View() + " thinking...\n")
		case chat.StateFailed:
			b.WriteString(m.styles.Error.Render(ex.Answer) + "\n")
		default:
			b.WriteString(m.renderMarkdown(ex.Answer))
			if ex.Confidence > 0 {
				b.WriteString(m.styles.Subtle.Render(fmt.Sprintf("confidence: %d%%", int(ex.Confidence*100))) + "\n")
			}
			for _, src := range ex.Sources {
				b.WriteString(m.styles.Source.Render(fmt.Sprintf("  › %s (chunk %d, score %.2f)", src.Title, src.ChunkIndex, src.Score)) + "\n")
				b.WriteString(m.styles.Subtle.Render("    "+snippet(src.Text, 120)) + "\n")
			}
		}
		b.WriteString("\n")
	}

	if s := m.lastSearch; s != nil {
		b.WriteString(m.styles.Title.Render("Search: "+s.Query) + "\n")
		if s.Err != nil {
			b.WriteString(m.styles.Error.Render(api.Detail(s.Err)) + "\n")
		} else if len(s.Resp.Results) == 0 {
			b.WriteString(m.styles.Subtle.Render("no matching chunks") + "\n")
		} else {
			for _, r := range s.Resp.Results {
				b.WriteString(m.styles.Source.Render(fmt.Sprintf("  › %s (score %.2f)", r.Title, r.Score)) + "\n")
				b.WriteString(m.styles.Subtle.Render("    "+snippet(r.Text, 120)) + "\n")
			}
		}
	}
	return b.String()
}

func (m Model) renderMarkdown(text string) string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return out
		}
	}
	return text + "\n"
}

func snippet(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (m Model) viewChatScreen() string {
	var b strings.Builder
	b.WriteString("\n  " + m.styles.Title.Render("Chat with your documents") + "\n")
	b.WriteString(m.viewport.View() + "\n")

	if adv := m.conv.Advisory(); adv != nil {
		b.WriteString("  " + m.styles.Error.Render(api.Detail(adv)) + m.styles.Help.Render("  (ctrl+d to dismiss)") + "\n")
	}

	b.WriteString("  " + m.chatInput.View() + "\n")
	b.WriteString("  " + m.styles.Help.Render("enter: send • /search <query>: find chunks • esc: menu • ctrl+c: quit"))
	return b.String()
}
