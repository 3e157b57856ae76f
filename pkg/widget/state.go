// Package widget implements the conversational session controller: the state
// machine coordinating open/close, onboarding, and chat, plus the transcript
// it owns.
package widget

import (
	"github.com/looplab/fsm"
)

// View is the single active widget view. Transitions through the state
// machine are the only legal way to change it.
type View string

const (
	ViewClosed     View = "closed"
	ViewLoading    View = "loading"
	ViewOnboarding View = "onboarding"
	ViewChat       View = "chat"
	ViewError      View = "error"
)

// Events driving view transitions.
const (
	EventOpen     = "open"     // closed -> loading (no stored session)
	EventResume   = "resume"   // closed -> chat (returning session)
	EventOnboard  = "onboard"  // loading -> onboarding
	EventChat     = "chat"     // loading -> chat
	EventComplete = "complete" // onboarding -> loading (submit in flight)
	EventFail     = "fail"     // loading -> error
	EventRetry    = "retry"    // error -> loading
	EventClose    = "close"    // any open view -> closed
)

// newMachine builds the widget state machine. In-chat send failures do not
// transition; they render an inline retry affordance instead.
func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		string(ViewClosed),
		fsm.Events{
			{Name: EventOpen, Src: []string{string(ViewClosed)}, Dst: string(ViewLoading)},
			{Name: EventResume, Src: []string{string(ViewClosed)}, Dst: string(ViewChat)},
			{Name: EventOnboard, Src: []string{string(ViewLoading)}, Dst: string(ViewOnboarding)},
			{Name: EventChat, Src: []string{string(ViewLoading)}, Dst: string(ViewChat)},
			{Name: EventComplete, Src: []string{string(ViewOnboarding)}, Dst: string(ViewLoading)},
			{Name: EventFail, Src: []string{string(ViewLoading)}, Dst: string(ViewError)},
			{Name: EventRetry, Src: []string{string(ViewError)}, Dst: string(ViewLoading)},
			{Name: EventClose, Src: []string{
				string(ViewLoading),
				string(ViewOnboarding),
				string(ViewChat),
				string(ViewError),
			}, Dst: string(ViewClosed)},
		},
		fsm.Callbacks{},
	)
}
