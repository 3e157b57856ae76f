package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yonatanbot/yonatan/pkg/markup"
	"github.com/yonatanbot/yonatan/pkg/onboarding"
	"github.com/yonatanbot/yonatan/pkg/store"
	"github.com/yonatanbot/yonatan/pkg/widget"
)

// Messages flowing back from controller goroutines.
type streamChunkMsg string
type opDoneMsg struct{ err error }

// ChatModel is the interactive widget: onboarding steps, the chat transcript
// with streamed replies, and error/retry handling, all driven by the
// controller's view state.
type ChatModel struct {
	ctrl *widget.Controller

	input textinput.Model
	spin  spinner.Model

	chunks    chan string
	streaming string
	busy      bool
	errText   string

	chips    []string
	chipUsed bool

	width    int
	quitting bool
}

func NewChatModel(ctrl *widget.Controller) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "כתבו הודעה..."
	ti.CharLimit = 2000
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ChatModel{
		ctrl:   ctrl,
		input:  ti,
		spin:   s,
		chunks: make(chan string, 64),
		busy:   true,
	}
}

// RunChat opens the widget and runs the interactive program until the user
// quits.
func RunChat(ctrl *widget.Controller) error {
	p := tea.NewProgram(NewChatModel(ctrl))
	_, err := p.Run()
	return err
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.openCmd(), m.waitChunk())
}

// emit forwards a cumulative stream snapshot without ever blocking the
// network goroutine; under backpressure intermediate snapshots are dropped
// and the final text arrives with opDoneMsg.
func (m ChatModel) emit(textSoFar string) {
	select {
	case m.chunks <- textSoFar:
	default:
	}
}

func (m ChatModel) waitChunk() tea.Cmd {
	ch := m.chunks
	return func() tea.Msg {
		return streamChunkMsg(<-ch)
	}
}

func (m ChatModel) openCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.ctrl.Open(context.Background(), m.emit)
		if err == nil {
			m.ctrl.ProbeHealth(context.Background())
		}
		return opDoneMsg{err: err}
	}
}

func (m ChatModel) answerCmd(value string) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: m.ctrl.AnswerCurrent(context.Background(), value, m.emit)}
	}
}

func (m ChatModel) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: m.ctrl.Send(context.Background(), text, m.emit)}
	}
}

func (m ChatModel) retrySendCmd() tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: m.ctrl.RetryLastSend(context.Background(), m.emit)}
	}
}

func (m ChatModel) retryCmd() tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: m.ctrl.Retry(context.Background(), m.emit)}
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case streamChunkMsg:
		m.streaming = string(msg)
		return m, m.waitChunk()

	case opDoneMsg:
		m.busy = false
		m.streaming = ""
		m.errText = ""
		if msg.err != nil {
			m.errText = describeError(msg.err)
		}
		m.refreshChips()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.ctrl.Close(context.Background())
		m.quitting = true
		return m, tea.Quit

	case "ctrl+r":
		if m.busy {
			return m, nil
		}
		if m.ctrl.View() == widget.ViewError {
			m.busy = true
			return m, tea.Batch(m.spin.Tick, m.retryCmd())
		}
		if m.ctrl.PendingRetry() {
			m.busy = true
			return m, tea.Batch(m.spin.Tick, m.retrySendCmd())
		}
		return m, nil

	case "enter":
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) handleSubmit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	value := strings.TrimSpace(m.input.Value())

	switch m.ctrl.View() {
	case widget.ViewError:
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.retryCmd())

	case widget.ViewOnboarding:
		if value == "" {
			return m, nil
		}
		if idx, ok := m.choiceIndex(value); ok {
			value = m.ctrl.Flow().Current().Options[idx]
		}
		m.input.SetValue("")
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.answerCmd(value))

	case widget.ViewChat:
		if value == "" {
			return m, nil
		}
		if idx, ok := m.chipIndex(value); ok {
			value = m.chips[idx]
			m.chipUsed = true
		}
		m.input.SetValue("")
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.sendCmd(value))
	}
	return m, nil
}

// choiceIndex resolves a typed number against the current choice options.
func (m ChatModel) choiceIndex(value string) (int, bool) {
	q := m.ctrl.Flow().Current()
	if q.Type != onboarding.TypeChoice {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > len(q.Options) {
		return 0, false
	}
	return n - 1, true
}

// chipIndex resolves a typed number against the current suggestion chips.
// Each chip row activates at most once.
func (m ChatModel) chipIndex(value string) (int, bool) {
	if m.chipUsed || len(m.chips) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > len(m.chips) {
		return 0, false
	}
	return n - 1, true
}

// refreshChips pulls the suggestion chips from the latest assistant message.
func (m *ChatModel) refreshChips() {
	m.chips = nil
	m.chipUsed = false
	transcript := m.ctrl.Transcript()
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Sender == store.SenderBot {
			m.chips = markup.Chips(markup.Parse(transcript[i].Text))
			return
		}
	}
}

func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" יונתן — תמיכה להורים "))
	if m.ctrl.Degraded() {
		b.WriteString(" " + degradedBadge)
	}
	b.WriteString("\n\n")

	switch m.ctrl.View() {
	case widget.ViewLoading:
		b.WriteString(fmt.Sprintf("%s מתחבר...\n", m.spin.View()))

	case widget.ViewOnboarding:
		b.WriteString(m.viewOnboarding())

	case widget.ViewChat:
		b.WriteString(m.viewChat())

	case widget.ViewError:
		b.WriteString(errorStyle.Render("החיבור נכשל."))
		b.WriteString("\n")
		if m.errText != "" {
			b.WriteString(hintStyle.Render(m.errText) + "\n")
		}
		b.WriteString(hintStyle.Render("enter לניסיון חוזר, esc ליציאה") + "\n")
	}

	return b.String()
}

func (m ChatModel) viewOnboarding() string {
	var b strings.Builder
	flow := m.ctrl.Flow()
	q := flow.Current()

	b.WriteString(RenderOnboardingProgress(flow.Step(), flow.Total()))
	b.WriteString("\n")
	b.WriteString(botLabelStyle.Render(q.Prompt))
	b.WriteString("\n")

	switch q.Type {
	case onboarding.TypeChoice:
		for i, opt := range q.Options {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, opt))
		}
		b.WriteString(hintStyle.Render("בחרו מספר או כתבו את התשובה") + "\n")
	case onboarding.TypeScale:
		b.WriteString(hintStyle.Render(fmt.Sprintf("דרגו מ-%d עד %d", q.Min, q.Max)) + "\n")
	default:
		if q.Placeholder != "" {
			b.WriteString(hintStyle.Render(q.Placeholder) + "\n")
		}
	}

	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText) + "\n")
	}
	if m.busy {
		b.WriteString(m.spin.View() + "\n")
	}
	b.WriteString("\n" + m.input.View() + "\n")
	return b.String()
}

func (m ChatModel) viewChat() string {
	var b strings.Builder

	for _, msg := range m.ctrl.Transcript() {
		switch msg.Sender {
		case store.SenderUser:
			b.WriteString(RenderUserMessage(msg.Text))
		case store.SenderBot:
			b.WriteString(RenderBotMessage(msg.Text))
		}
		b.WriteString("\n")
	}

	if m.busy {
		if m.streaming != "" {
			b.WriteString(botTextStyle.Render(markup.PlainText(markup.Parse(m.streaming))))
			b.WriteString("\n")
		}
		b.WriteString(m.spin.View() + "\n")
	}

	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText) + "\n")
		if m.ctrl.PendingRetry() {
			b.WriteString(hintStyle.Render("ctrl+r לשליחה חוזרת") + "\n")
		}
	}

	b.WriteString("\n" + m.input.View() + "\n")
	b.WriteString(hintStyle.Render("esc ליציאה") + "\n")
	return b.String()
}

// describeError maps transport failures to user-facing Hebrew text.
func describeError(err error) string {
	var ve *onboarding.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return widget.UserFacingError(err)
}
