package chat

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salmacher/Rag-project/internal/api"
)

// State is the lifecycle of one exchange. An exchange is mutated exactly
// once, Pending -> Resolved or Pending -> Failed, and never after that.
type State int

const (
	StatePending State = iota
	StateResolved
	StateFailed
)

// Placeholder answer shown while a question is in flight, and the fixed
// fallback shown when the backend fails.
const (
	pendingAnswer  = "..."
	fallbackAnswer = "Sorry, something went wrong."
)

// Exchange is one question/answer turn with provenance.
type Exchange struct {
	ID         string
	Question   string
	Answer     string
	Sources    []api.SourceRef
	Confidence float64
	Timestamp  time.Time
	State      State
}

// Conversation coordinates an append-only sequence of exchanges. Submitting
// appends an optimistic Pending entry immediately; the eventual answer (or
// failure) replaces it in place at the same position. At most one exchange is
// Pending at any time, enforced here rather than by the presentation layer.
type Conversation struct {
	ctx    context.Context
	client *api.Client
	log    *zap.Logger

	maxResults    int
	responseStyle string

	exchanges []Exchange
	pending   int // index of the Pending exchange, -1 when none
	advisory  error
}

// answerMsg reconciles a pending exchange. idx pins the sequence position so
// replacement is positional, never append-and-drop.
type answerMsg struct {
	idx  int
	resp *api.AskResponse
	err  error
}

// SearchResultMsg carries a similarity-search result; it never touches
// conversation state.
type SearchResultMsg struct {
	Query string
	Resp  *api.SearchResponse
	Err   error
}

// ProbeResultMsg carries the connectivity probe outcome.
type ProbeResultMsg struct {
	Resp *api.ProbeResponse
	Err  error
}

func NewConversation(ctx context.Context, client *api.Client, maxResults int, responseStyle string, log *zap.Logger) *Conversation {
	return &Conversation{
		ctx:           ctx,
		client:        client,
		log:           log,
		maxResults:    maxResults,
		responseStyle: responseStyle,
		pending:       -1,
	}
}

func (c *Conversation) Exchanges() []Exchange { return c.exchanges }

// Pending reports whether an exchange is currently in flight.
func (c *Conversation) Pending() bool { return c.pending >= 0 }

// Advisory is the conversation-level error signal, dismissible independently
// of the exchange list.
func (c *Conversation) Advisory() error { return c.advisory }

func (c *Conversation) DismissAdvisory() { c.advisory = nil }

// Submit appends an optimistic Pending exchange and asks the backend. It is a
// no-op for blank questions and while another exchange is Pending, so rapid
// re-submission can never reorder history.
func (c *Conversation) Submit(question string) tea.Cmd {
	q := strings.TrimSpace(question)
	if q == "" || c.pending >= 0 {
		return nil
	}

	c.exchanges = append(c.exchanges, Exchange{
		ID:        uuid.NewString(),
		Question:  q,
		Answer:    pendingAnswer,
		Timestamp: time.Now(),
		State:     StatePending,
	})
	idx := len(c.exchanges) - 1
	c.pending = idx

	req := api.AskRequest{
		Question:       q,
		MaxResults:     c.maxResults,
		ResponseStyle:  c.responseStyle,
		IncludeSources: true,
	}
	return func() tea.Msg {
		resp, err := c.client.Ask(c.ctx, req)
		return answerMsg{idx: idx, resp: resp, err: err}
	}
}

// SearchSimilar is a side-effect-free passthrough.
func (c *Conversation) SearchSimilar(query string, limit int) tea.Cmd {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}
	return func() tea.Msg {
		resp, err := c.client.SearchSimilar(c.ctx, q, limit)
		return SearchResultMsg{Query: q, Resp: resp, Err: err}
	}
}

// Probe checks backend connectivity without touching conversation state.
func (c *Conversation) Probe() tea.Cmd {
	return func() tea.Msg {
		resp, err := c.client.Probe(c.ctx)
		return ProbeResultMsg{Resp: resp, Err: err}
	}
}

// Update applies answer messages produced by Submit.
func (c *Conversation) Update(msg tea.Msg) tea.Cmd {
	res, ok := msg.(answerMsg)
	if !ok {
		return nil
	}
	if res.idx != c.pending || res.idx >= len(c.exchanges) {
		return nil
	}
	ex := &c.exchanges[res.idx]
	if ex.State != StatePending {
		return nil
	}
	c.pending = -1

	if res.err != nil {
		ex.State = StateFailed
		ex.Answer = fallbackAnswer
		c.advisory = res.err
		c.log.Warn("exchange failed", zap.String("question", ex.Question), zap.Error(res.err))
		return nil
	}

	ex.State = StateResolved
	ex.Answer = res.resp.Answer
	ex.Sources = res.resp.Sources
	ex.Confidence = res.resp.Confidence
	if ts, ok := parseTimestamp(res.resp.Timestamp); ok {
		ex.Timestamp = ts
	}
	c.log.Info("exchange resolved",
		zap.Float64("confidence", ex.Confidence),
		zap.Int("sources", len(ex.Sources)))
	return nil
}

// parseTimestamp handles both RFC 3339 and the backend's naive ISO format.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
