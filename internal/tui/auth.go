package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/salmacher/Rag-project/internal/api"
)

// focusAuthField moves focus within the login/register form.
func (m *Model) focusAuthField(i int) {
	m.focusIdx = i
	inputs := m.authInputs()
	for idx := range inputs {
		if idx == i {
			inputs[idx].Focus()
		} else {
			inputs[idx].Blur()
		}
	}
}

// authInputs returns the form fields for the current screen, in tab order.
func (m *Model) authInputs() []*textinput.Model {
	if m.screen == screenRegister {
		return []*textinput.Model{&m.nameInput, &m.emailInput, &m.passInput}
	}
	return []*textinput.Model{&m.emailInput, &m.passInput}
}

func (m Model) updateAuthScreen(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.focusAuthField((m.focusIdx + 1) % len(m.authInputs()))
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		n := len(m.authInputs())
		m.focusAuthField((m.focusIdx + n - 1) % n)
		return m, nil
	case tea.KeyEnter:
		return m.submitAuthForm()
	case tea.KeyCtrlR:
		// Toggle between sign-in and registration.
		m.sess.DismissErr()
		m.advisory = ""
		if m.screen == screenLogin {
			m.screen = screenRegister
		} else {
			m.screen = screenLogin
		}
		m.focusAuthField(0)
		return m, nil
	}

	inputs := m.authInputs()
	var cmd tea.Cmd
	*inputs[m.focusIdx], cmd = inputs[m.focusIdx].Update(msg)
	return m, cmd
}

func (m Model) submitAuthForm() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passInput.Value()
	if email == "" || password == "" {
		return m, nil
	}
	m.advisory = ""
	if m.screen == screenRegister {
		return m, m.sess.Register(email, password, strings.TrimSpace(m.nameInput.Value()))
	}
	return m, m.sess.Login(email, password)
}

func (m Model) viewAuthScreen() string {
	var b strings.Builder
	b.WriteString("\n  ")
	if m.screen == screenRegister {
		b.WriteString(m.styles.Title.Render("Create an account"))
	} else {
		b.WriteString(m.styles.Title.Render("RAG Assistant — Sign in"))
	}
	b.WriteString("\n\n")

	if m.screen == screenRegister {
		b.WriteString("  " + m.nameInput.View() + "\n")
	}
	b.WriteString("  " + m.emailInput.View() + "\n")
	b.WriteString("  " + m.passInput.View() + "\n\n")

	if err := m.sess.Err(); err != nil {
		b.WriteString("  " + m.styles.Error.Render(api.Detail(err)) + "\n\n")
	}
	if m.advisory != "" {
		b.WriteString("  " + m.styles.Notice.Render(m.advisory) + "\n\n")
	}

	if m.screen == screenRegister {
		b.WriteString("  " + m.styles.Help.Render("enter: register • ctrl+r: back to sign in • ctrl+c: quit"))
	} else {
		b.WriteString("  " + m.styles.Help.Render("enter: sign in • ctrl+r: create an account • ctrl+c: quit"))
	}
	return b.String()
}
