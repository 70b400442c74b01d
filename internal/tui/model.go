// Package tui is the interactive terminal surface. The bubbletea update loop
// is the single place where state mutates; network work runs as commands and
// comes back as messages, so the session, chat and documents cores stay
// race-free without locks.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/salmacher/Rag-project/internal/api"
	"github.com/salmacher/Rag-project/internal/chat"
	"github.com/salmacher/Rag-project/internal/config"
	"github.com/salmacher/Rag-project/internal/documents"
	"github.com/salmacher/Rag-project/internal/gate"
	"github.com/salmacher/Rag-project/internal/session"
)

type screen int

const (
	screenHome screen = iota
	screenLogin
	screenRegister
	screenChat
	screenDocuments
)

// access maps each screen to the gate level it requires.
func access(s screen) gate.Access {
	switch s {
	case screenLogin, screenRegister:
		return gate.PublicOnly
	default:
		return gate.ProtectedOnly
	}
}

// docMode is the sub-state of the documents screen.
type docMode int

const (
	docBrowse docMode = iota
	docUploadPrompt
)

// Model is the root bubbletea model.
type Model struct {
	log    *zap.Logger
	styles Styles

	sess *session.Manager
	conv *chat.Conversation
	docs *documents.ViewModel

	screen screen

	// login / register form
	emailInput textinput.Model
	passInput  textinput.Model
	nameInput  textinput.Model
	focusIdx   int

	// chat
	chatInput  textinput.Model
	viewport   viewport.Model
	renderer   *glamour.TermRenderer
	lastSearch *chat.SearchResultMsg

	// documents
	docCursor int
	mode      docMode
	pathInput textinput.Model

	// home
	probeStatus string

	spinner  spinner.Model
	advisory string // root-level notices, e.g. forced logout
	width    int
	height   int
	ready    bool
}

func New(ctx context.Context, cfg *config.Config, client *api.Client, store *session.Store, log *zap.Logger) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.CharLimit = 128

	name := textinput.New()
	name.Placeholder = "full name"
	name.CharLimit = 128

	ask := textinput.New()
	ask.Placeholder = "Ask something about your documents..."
	ask.CharLimit = 512

	path := textinput.New()
	path.Placeholder = "path to file, e.g. ./notes.pdf"
	path.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		log:        log,
		styles:     DefaultStyles(),
		sess:       session.NewManager(ctx, client, store, log),
		conv:       chat.NewConversation(ctx, client, cfg.MaxResults, cfg.ResponseStyle, log),
		docs:       documents.NewViewModel(ctx, client, cfg.PageSize, log),
		screen:     screenLogin,
		emailInput: email,
		passInput:  pass,
		nameInput:  name,
		chatInput:  ask,
		pathInput:  path,
		spinner:    sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.sess.Bootstrap())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.resize(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case chat.SearchResultMsg:
		m.lastSearch = &msg
		m.refreshChatView()

	case chat.ProbeResultMsg:
		if msg.Err != nil {
			m.probeStatus = api.Detail(msg.Err)
		} else {
			m.probeStatus = msg.Resp.OpenAIStatus
		}
	}

	// Route every message through the stateful cores; each consumes its own.
	statusBefore := m.sess.Status()
	pendingBefore := m.conv.Pending()
	cmds = append(cmds, m.sess.Update(msg), m.conv.Update(msg), m.docs.Update(msg))

	if pendingBefore != m.conv.Pending() {
		m.refreshChatView()
	}
	if statusBefore != m.sess.Status() {
		m = m.regate()
	}
	m = m.enforceAuthPolicy()

	if m.busy() {
		cmds = append(cmds, m.spinner.Tick)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// busy reports whether any asynchronous work is observable right now.
func (m Model) busy() bool {
	return m.sess.Status() == session.StatusVerifying || m.conv.Pending() || m.docs.Loading()
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := 3
	footerHeight := 4
	if !m.ready {
		m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - headerHeight - footerHeight
	}
	m.chatInput.Width = msg.Width - 8
	m.pathInput.Width = msg.Width - 8

	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(msg.Width-8),
	)
	m.refreshChatView()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.screen {
	case screenLogin, screenRegister:
		return m.updateAuthScreen(msg)
	case screenChat:
		return m.updateChatScreen(msg)
	case screenDocuments:
		return m.updateDocumentsScreen(msg)
	default:
		return m.updateHomeScreen(msg)
	}
}

// navigate applies the route gate before switching screens.
func (m Model) navigate(target screen) (Model, tea.Cmd) {
	switch gate.Decide(access(target), m.sess.Status()) {
	case gate.RedirectLogin:
		m.screen = screenLogin
		m.focusAuthField(0)
		return m, nil
	case gate.RedirectHome:
		m.screen = screenHome
		return m, nil
	default:
		m.screen = target
	}

	var cmd tea.Cmd
	switch target {
	case screenDocuments:
		m.mode = docBrowse
		cmd = m.docs.Load(m.docs.PageIndex())
	case screenChat:
		m.chatInput.Focus()
		m.refreshChatView()
	case screenLogin, screenRegister:
		m.focusAuthField(0)
	}
	return m, cmd
}

// regate re-evaluates the current screen after a session status change, e.g.
// redirecting to home after a successful login.
func (m Model) regate() Model {
	switch gate.Decide(access(m.screen), m.sess.Status()) {
	case gate.RedirectLogin:
		m.screen = screenLogin
		m.focusAuthField(0)
	case gate.RedirectHome:
		m.screen = screenHome
	}
	return m
}

// enforceAuthPolicy implements the expired-token decision: an auth-kind
// failure on an authorized call ends the session locally and gates back to
// the login screen.
func (m Model) enforceAuthPolicy() Model {
	if m.sess.Status() != session.StatusAuthenticated {
		return m
	}
	for _, adv := range []error{m.conv.Advisory(), m.docs.Advisory()} {
		if adv != nil && api.IsKind(adv, api.KindAuth) {
			m.log.Info("authorized call rejected, closing session")
			m.sess.Logout()
			m.conv.DismissAdvisory()
			m.docs.DismissAdvisory()
			m.advisory = "Your session has expired. Please sign in again."
			m.screen = screenLogin
			m.focusAuthField(0)
			break
		}
	}
	return m
}

func (m Model) View() string {
	if !m.ready {
		return "\n  starting..."
	}
	if gate.Decide(access(m.screen), m.sess.Status()) == gate.ShowLoading {
		return "\n  " + m.spinner.View() + m.styles.Subtle.Render("Checking your session...")
	}
	switch m.screen {
	case screenLogin, screenRegister:
		return m.viewAuthScreen()
	case screenChat:
		return m.viewChatScreen()
	case screenDocuments:
		return m.viewDocumentsScreen()
	default:
		return m.viewHomeScreen()
	}
}
