package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/yonatanbot/yonatan/pkg/client"
	"github.com/yonatanbot/yonatan/pkg/logger"
	"github.com/yonatanbot/yonatan/pkg/onboarding"
	"github.com/yonatanbot/yonatan/pkg/store"
)

// StartSentinel elicits the bot's opening message. It is sent to the backend
// but never rendered as a user bubble.
const StartSentinel = "START_CONVERSATION"

// Fallback strings rendered when the backend cannot be reached.
const (
	apologyAfterSubmitFailure = "אופס, הייתה בעיה בשמירת הנתונים. בוא/י ננסה לדבר בכל זאת."
	welcomeBack               = "ברוך/ה שובך! אני כאן אם תרצה/י להמשיך את שיחתנו."
)

// ErrSendInFlight reports an attempted send while another is outstanding.
var ErrSendInFlight = errors.New("a message send is already in flight")

// API is the backend surface the controller needs. *client.Client satisfies it.
type API interface {
	Init(ctx context.Context) (*client.Session, error)
	SubmitQuestionnaire(ctx context.Context, sessionID string, answers map[string]any) error
	Chat(ctx context.Context, sessionID, message string, onChunk func(textSoFar string)) (string, error)
	Health(ctx context.Context) (*client.Health, error)
	ResetSession(ctx context.Context, sessionID string) error
	Children(ctx context.Context, sessionID string) ([]client.Child, error)
	SaveProfile(ctx context.Context, sessionID, name, gender string) (*client.Profile, error)
}

// Controller owns the widget state: the view machine, session, transcript,
// and onboarding flow. Accessors may be called while an operation runs on
// another goroutine; the mutex is never held across a network call.
type Controller struct {
	machine *fsm.FSM
	api     API
	store   *store.Store
	log     zerolog.Logger

	mu          sync.RWMutex
	flow        *onboarding.Flow
	sessionID   string
	transcript  []store.Message
	sending     bool
	pendingSend string // last failed user message, for idempotent retry
	lastErr     error
	degraded    bool
}

// NewController wires a controller in the closed state.
func NewController(api API, st *store.Store) *Controller {
	return &Controller{
		machine: newMachine(),
		api:     api,
		store:   st,
		log:     logger.Component("widget"),
	}
}

// View returns the active widget view.
func (c *Controller) View() View {
	return View(c.machine.Current())
}

// SessionID returns the current session id, empty before init.
func (c *Controller) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Sending reports whether a user-initiated send is outstanding.
func (c *Controller) Sending() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sending
}

// LastError returns the most recent terminal failure, for the error view.
func (c *Controller) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Degraded reports backend fallback mode, as learned from the health probe.
func (c *Controller) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

// PendingRetry reports whether a failed send is waiting for a retry.
func (c *Controller) PendingRetry() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pendingSend != ""
}

// Flow exposes the active onboarding flow, nil outside the onboarding view.
func (c *Controller) Flow() *onboarding.Flow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flow
}

// Transcript returns a copy of the conversation so far.
func (c *Controller) Transcript() []store.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]store.Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Open expands the widget. A stored session resumes straight into chat; a
// cold start runs init and enters onboarding. onChunk receives cumulative
// greeting text when chat entry triggers the opening message.
func (c *Controller) Open(ctx context.Context, onChunk func(string)) error {
	if c.View() != ViewClosed {
		return nil
	}

	st := c.store.Load()
	if st.SessionID != "" {
		c.mu.Lock()
		c.sessionID = st.SessionID
		c.transcript = st.Transcript
		empty := len(st.Transcript) == 0
		c.mu.Unlock()

		c.event(ctx, EventResume)
		c.log.Debug().Str("session_id", st.SessionID).Msg("resumed stored session")
		if empty {
			c.startConversation(ctx, onChunk)
		}
		return nil
	}

	c.event(ctx, EventOpen)
	return c.bootstrap(ctx, onChunk)
}

// bootstrap runs from the loading view: init a session, then route to
// onboarding (new session) or chat (session already in hand).
func (c *Controller) bootstrap(ctx context.Context, onChunk func(string)) error {
	c.mu.RLock()
	haveSession := c.sessionID != ""
	empty := len(c.transcript) == 0
	c.mu.RUnlock()

	if haveSession {
		c.event(ctx, EventChat)
		if empty {
			c.startConversation(ctx, onChunk)
		}
		return nil
	}

	sess, err := c.api.Init(ctx)
	if err != nil {
		c.setLastErr(err)
		c.event(ctx, EventFail)
		return fmt.Errorf("failed to initialize session: %w", err)
	}

	c.mu.Lock()
	c.sessionID = sess.SessionID
	c.flow = onboarding.NewFlow()
	c.mu.Unlock()
	c.persist()
	c.event(ctx, EventOnboard)
	return nil
}

// AnswerCurrent submits an answer for the active onboarding step. Validation
// failures keep the step and surface a *onboarding.ValidationError. Answering
// the final question submits the questionnaire and enters chat.
func (c *Controller) AnswerCurrent(ctx context.Context, value string, onChunk func(string)) error {
	c.mu.Lock()
	if c.View() != ViewOnboarding || c.flow == nil {
		c.mu.Unlock()
		return fmt.Errorf("not in onboarding")
	}
	if err := c.flow.Answer(value); err != nil {
		c.mu.Unlock()
		return err
	}
	done := c.flow.Done()
	c.mu.Unlock()

	if !done {
		return nil
	}
	return c.completeOnboarding(ctx, onChunk)
}

// completeOnboarding posts the answer batch exactly once. Success and failure
// both enter chat; failure degrades to a local apology message.
func (c *Controller) completeOnboarding(ctx context.Context, onChunk func(string)) error {
	c.event(ctx, EventComplete)

	c.mu.Lock()
	answers := c.flow.Answers()
	sessionID := c.sessionID
	c.flow = nil // answers are not part of long-lived session state
	c.mu.Unlock()

	err := c.api.SubmitQuestionnaire(ctx, sessionID, answers)
	c.event(ctx, EventChat)
	if err != nil {
		c.log.Warn().Err(err).Msg("questionnaire submission failed, starting chat anyway")
		c.appendBot(apologyAfterSubmitFailure)
		c.persist()
		return nil
	}

	c.startConversation(ctx, onChunk)
	return nil
}

// startConversation sends the start sentinel to elicit an opening reply. On
// failure it degrades to a local welcome message rather than surfacing an
// error on chat entry.
func (c *Controller) startConversation(ctx context.Context, onChunk func(string)) {
	reply, err := c.api.Chat(ctx, c.SessionID(), StartSentinel, onChunk)
	if err != nil {
		c.log.Warn().Err(err).Msg("opening message failed, using local greeting")
		c.appendBot(welcomeBack)
	} else {
		c.appendBot(reply)
	}
	c.persist()
}

// Send posts a user message and appends the streamed reply. At most one send
// may be outstanding. On failure the message stays in the transcript and is
// retryable via RetryLastSend without being duplicated.
func (c *Controller) Send(ctx context.Context, text string, onChunk func(string)) error {
	if c.View() != ViewChat {
		return fmt.Errorf("not in chat")
	}
	if text == "" {
		return nil
	}
	if c.Sending() {
		return ErrSendInFlight
	}
	c.appendUser(text)
	return c.roundTrip(ctx, text, onChunk)
}

// RetryLastSend re-invokes the failed send with the same message text. The
// user bubble is already in the transcript, so only the round trip repeats.
func (c *Controller) RetryLastSend(ctx context.Context, onChunk func(string)) error {
	c.mu.RLock()
	pending := c.pendingSend
	c.mu.RUnlock()
	if pending == "" {
		return nil
	}
	return c.roundTrip(ctx, pending, onChunk)
}

func (c *Controller) roundTrip(ctx context.Context, text string, onChunk func(string)) error {
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.sending = true
	c.pendingSend = ""
	sessionID := c.sessionID
	c.mu.Unlock()

	reply, err := c.api.Chat(ctx, sessionID, text, onChunk)

	c.mu.Lock()
	c.sending = false
	if err != nil {
		c.pendingSend = text
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	c.appendBot(reply)
	c.persist()
	return nil
}

// Retry re-probes the backend from the error view and routes onward based on
// session presence.
func (c *Controller) Retry(ctx context.Context, onChunk func(string)) error {
	if c.View() != ViewError {
		return fmt.Errorf("not in error state")
	}
	c.event(ctx, EventRetry)

	h, err := c.api.Health(ctx)
	if err != nil {
		c.setLastErr(err)
		c.event(ctx, EventFail)
		return fmt.Errorf("backend still unreachable: %w", err)
	}

	c.mu.Lock()
	c.degraded = h.Degraded()
	c.mu.Unlock()
	return c.bootstrap(ctx, onChunk)
}

// ProbeHealth refreshes the degraded-mode flag. Best effort.
func (c *Controller) ProbeHealth(ctx context.Context) {
	h, err := c.api.Health(ctx)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.degraded = h.Degraded()
	c.mu.Unlock()
}

// Close collapses the widget from any view and persists the transcript.
func (c *Controller) Close(ctx context.Context) {
	if c.View() == ViewClosed {
		return
	}
	c.persist()
	c.event(ctx, EventClose)
}

// Reset clears the server-side session (best effort) and all local state.
func (c *Controller) Reset(ctx context.Context) error {
	if id := c.SessionID(); id != "" {
		if err := c.api.ResetSession(ctx, id); err != nil {
			c.log.Warn().Err(err).Msg("server-side session reset failed")
		}
	}
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear local state: %w", err)
	}

	c.mu.Lock()
	c.sessionID = ""
	c.transcript = nil
	c.flow = nil
	c.pendingSend = ""
	c.lastErr = nil
	c.mu.Unlock()
	c.machine.SetState(string(ViewClosed))
	return nil
}

// Children lists child profiles, transparently re-initializing the session
// and replaying the call once when the server reports the session expired.
func (c *Controller) Children(ctx context.Context) ([]client.Child, error) {
	children, err := c.api.Children(ctx, c.SessionID())
	if err == nil || !errors.Is(err, client.ErrSessionExpired) {
		return children, err
	}
	if rerr := c.repairSession(ctx); rerr != nil {
		return nil, err
	}
	return c.api.Children(ctx, c.SessionID())
}

// SaveProfile stores the parent profile, with the same one-shot session repair.
func (c *Controller) SaveProfile(ctx context.Context, name, gender string) (*client.Profile, error) {
	p, err := c.api.SaveProfile(ctx, c.SessionID(), name, gender)
	if err == nil || !errors.Is(err, client.ErrSessionExpired) {
		return p, err
	}
	if rerr := c.repairSession(ctx); rerr != nil {
		return nil, err
	}
	return c.api.SaveProfile(ctx, c.SessionID(), name, gender)
}

func (c *Controller) repairSession(ctx context.Context) error {
	sess, err := c.api.Init(ctx)
	if err != nil {
		return err
	}
	c.log.Info().Str("session_id", sess.SessionID).Msg("re-initialized expired session")
	c.mu.Lock()
	c.sessionID = sess.SessionID
	c.mu.Unlock()
	c.persist()
	return nil
}

func (c *Controller) setLastErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Controller) appendUser(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = append(c.transcript, store.Message{
		ID:        uuid.NewString(),
		Sender:    store.SenderUser,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (c *Controller) appendBot(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = append(c.transcript, store.Message{
		ID:        uuid.NewString(),
		Sender:    store.SenderBot,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (c *Controller) persist() {
	c.mu.RLock()
	sessionID := c.sessionID
	transcript := make([]store.Message, len(c.transcript))
	copy(transcript, c.transcript)
	c.mu.RUnlock()

	if err := c.store.Save(sessionID, transcript); err != nil {
		c.log.Warn().Err(err).Msg("failed to persist state")
	}
}

// event fires a state transition. Transitions are statically defined in
// newMachine; a rejected event here is a programming error worth logging.
func (c *Controller) event(ctx context.Context, name string) {
	if err := c.machine.Event(ctx, name); err != nil {
		c.log.Error().Err(err).Str("event", name).Str("view", c.machine.Current()).
			Msg("illegal view transition")
	}
}
