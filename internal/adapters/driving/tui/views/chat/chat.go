// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// tokenBuffer bounds how far generation may run ahead of rendering.
const tokenBuffer = 64

// entry is one exchange shown in the transcript.
type entry struct {
	question string
	answer   string
	sources  []domain.Passage
	err      error
}

// stream connects an in-flight Ask call to the Elm loop.
type stream struct {
	tokens chan string
	done   chan messages.AnswerCompleted
	cancel context.CancelFunc
}

// View represents the chat view with transcript, question input, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	viewport  viewport.Model
	statusbar *status.Bar

	chatService    driving.ChatService
	sessionService driving.SessionService
	ctx            context.Context

	// sessionID names the persisted session, if any.
	// When empty, history is carried in memory and sent with each question.
	sessionID string
	history   []domain.ChatTurn
	entries   []entry
	pending   *entry
	stream    *stream

	showSources bool
	width       int
	height      int
	ready       bool
	err         error
}

// NewView creates a new chat view.
// sessions may be nil, in which case conversations are not persisted.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	chatService driving.ChatService,
	sessionService driving.SessionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:         s,
		keymap:         km,
		input:          input.NewQuestionInput(s),
		viewport:       viewport.New(80, 16),
		statusbar:      status.NewBar(s, km),
		chatService:    chatService,
		sessionService: sessionService,
		ctx:            context.Background(),
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithSession makes the view continue the given persisted session.
func (v *View) WithSession(id string) *View {
	v.sessionID = id
	return v
}

// Init initialises the view, loading the session transcript if one is set.
func (v *View) Init() tea.Cmd {
	cmds := []tea.Cmd{v.input.Init()}
	if v.sessionID != "" && v.sessionService != nil {
		cmds = append(cmds, v.loadSession(v.sessionID))
	}
	return tea.Batch(cmds...)
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case messages.QuestionSubmitted:
		return v, v.ask(msg.Question)

	case messages.TokenReceived:
		if v.pending == nil || v.stream == nil {
			return v, nil
		}
		v.statusbar.SetState(status.StateStreaming)
		v.pending.answer += msg.Token
		v.refresh()
		return v, waitForStream(v.stream)

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.SessionLoaded:
		v.handleSessionLoaded(msg)
		return v, nil

	case messages.SessionStarted:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.sessionID = msg.Session.ID
		return v, nil

	case messages.PromptsReloaded:
		if !v.statusbar.Busy() {
			v.statusbar.SetMessage(fmt.Sprintf("Reloaded %s prompt", msg.Name))
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Cancel):
		if v.stream != nil {
			v.stream.cancel()
		}
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollUp):
		v.viewport.HalfViewUp()
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollDown):
		v.viewport.HalfViewDown()
		return v, nil

	case keymap.Matches(key, v.keymap.Sources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil

	case keymap.Matches(key, v.keymap.NewChat):
		if v.stream != nil {
			return v, nil
		}
		return v, v.newChat()

	case keymap.Matches(key, v.keymap.Send):
		if v.stream != nil {
			return v, nil
		}
		question := domain.SanitiseQuestion(v.input.Value())
		if question == "" {
			return v, nil
		}
		v.input.Reset()
		return v, v.ask(question)
	}

	// Typing is ignored while an answer is generated.
	if v.stream != nil {
		return v, nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask starts answering question and returns the command that delivers its tokens.
func (v *View) ask(question string) tea.Cmd {
	if v.chatService == nil {
		return func() tea.Msg {
			return messages.ErrorOccurred{Err: ErrNoChatService}
		}
	}

	req := domain.AskRequest{
		SessionID: v.sessionID,
		Question:  question,
	}
	if v.sessionID == "" {
		req.History = append([]domain.ChatTurn(nil), v.history...)
	}

	ctx, cancel := context.WithCancel(v.ctx)
	s := &stream{
		tokens: make(chan string, tokenBuffer),
		done:   make(chan messages.AnswerCompleted, 1),
		cancel: cancel,
	}
	v.stream = s
	v.pending = &entry{question: question}
	v.err = nil
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	chat := v.chatService
	go func() {
		defer cancel()
		sink := domain.Streaming(func(token string) error {
			select {
			case s.tokens <- token:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		answer, err := chat.Ask(ctx, req, sink)
		close(s.tokens)
		s.done <- messages.AnswerCompleted{Answer: answer, Err: err}
	}()

	return waitForStream(s)
}

// waitForStream delivers the next token, or the completed answer once the
// token channel is drained.
func waitForStream(s *stream) tea.Cmd {
	return func() tea.Msg {
		if token, ok := <-s.tokens; ok {
			return messages.TokenReceived{Token: token}
		}
		return <-s.done
	}
}

// handleAnswerCompleted records the finished exchange.
func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	pending := v.pending
	v.pending = nil
	v.stream = nil
	if pending == nil {
		return
	}

	if msg.Err != nil {
		err := msg.Err
		if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrStreamAborted) {
			err = ErrCancelled
		}
		pending.err = err
		v.entries = append(v.entries, *pending)
		v.setError(err)
		return
	}

	pending.answer = msg.Answer.Text
	pending.sources = msg.Answer.SourceDocuments
	v.entries = append(v.entries, *pending)
	v.history = append(v.history, domain.ChatTurn{
		Question: pending.question,
		Answer:   msg.Answer.Text,
	})
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetTurnCount(len(v.history))
	v.refresh()
}

// handleSessionLoaded shows a resumed session's prior turns.
func (v *View) handleSessionLoaded(msg messages.SessionLoaded) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.sessionID = msg.Session.ID
	v.history = append([]domain.ChatTurn(nil), msg.Session.Turns...)
	v.entries = v.entries[:0]
	for _, turn := range msg.Session.Turns {
		v.entries = append(v.entries, entry{question: turn.Question, answer: turn.Answer})
	}
	v.statusbar.SetTurnCount(len(v.history))
	if msg.Session.Title != "" {
		v.statusbar.SetMessage("Resumed: " + msg.Session.Title)
	}
	v.refresh()
}

// loadSession fetches a persisted session.
func (v *View) loadSession(id string) tea.Cmd {
	sessions := v.sessionService
	ctx := v.ctx
	return func() tea.Msg {
		session, err := sessions.Get(ctx, id)
		return messages.SessionLoaded{Session: session, Err: err}
	}
}

// newChat clears the conversation, starting a fresh session when persisting.
func (v *View) newChat() tea.Cmd {
	persisted := v.sessionID != ""
	v.Reset()
	if !persisted || v.sessionService == nil {
		return nil
	}
	sessions := v.sessionService
	ctx := v.ctx
	return func() tea.Msg {
		session, err := sessions.Create(ctx, "")
		return messages.SessionStarted{Session: session, Err: err}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.refresh()
}

// refresh re-renders the transcript into the viewport and follows the tail.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

// renderTranscript renders every exchange, including the one in progress.
func (v *View) renderTranscript() string {
	if len(v.entries) == 0 && v.pending == nil {
		return v.styles.Muted.Render("Ask anything about the contract. Follow-up questions use the conversation so far.")
	}

	wrap := lipgloss.NewStyle().Width(v.width - 2)
	blocks := make([]string, 0, len(v.entries)+1)
	render := func(e entry, inProgress bool) {
		lines := []string{
			v.styles.User.Render("You: ") + wrap.Render(e.question),
		}
		switch {
		case e.err != nil:
			lines = append(lines, v.styles.Error.Render("Error: "+e.err.Error()))
		case inProgress && e.answer == "":
			lines = append(lines, v.styles.Assistant.Render("Assistant: ")+v.styles.Muted.Render("..."))
		default:
			lines = append(lines, v.styles.Assistant.Render("Assistant: ")+wrap.Render(e.answer))
		}
		if v.showSources {
			for i := range e.sources {
				lines = append(lines, v.styles.Citation.Render(
					fmt.Sprintf("[%d] %s", i+1, e.sources[i].Citation())))
			}
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	for _, e := range v.entries {
		render(e, false)
	}
	if v.pending != nil {
		render(*v.pending, true)
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("pdfchat")
	if v.sessionID != "" {
		header += v.styles.Muted.Render("  session " + v.sessionID)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		v.viewport.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Reserve space for header, input box and status bar.
	transcriptHeight := height - 8
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	v.viewport.Width = width
	v.viewport.Height = transcriptHeight
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// History returns the completed turns in order.
func (v *View) History() []domain.ChatTurn {
	return v.history
}

// SessionID returns the persisted session being continued, if any.
func (v *View) SessionID() string {
	return v.sessionID
}

// Busy reports whether an answer is being generated.
func (v *View) Busy() bool {
	return v.stream != nil
}

// PendingAnswer returns the partial answer streamed so far.
func (v *View) PendingAnswer() string {
	if v.pending == nil {
		return ""
	}
	return v.pending.answer
}

// ShowSources reports whether citations are displayed.
func (v *View) ShowSources() bool {
	return v.showSources
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}

// Transcript returns the rendered transcript.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Reset clears the conversation and returns to the input.
func (v *View) Reset() {
	if v.stream != nil {
		v.stream.cancel()
	}
	v.stream = nil
	v.pending = nil
	v.sessionID = ""
	v.history = nil
	v.entries = nil
	v.err = nil
	v.input.Reset()
	v.input.Focus()
	v.statusbar.Clear()
	v.refresh()
}
