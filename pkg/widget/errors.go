package widget

import (
	"errors"

	"github.com/yonatanbot/yonatan/pkg/client"
)

// UserFacingError maps a transport failure to the Hebrew line shown in the
// widget. Technical detail stays in the logs.
func UserFacingError(err error) string {
	switch {
	case errors.Is(err, client.ErrThrottled):
		return "נשלחו יותר מדי הודעות ברצף. רגע של נשימה, וננסה שוב."
	case errors.Is(err, client.ErrTimeout):
		return "החיבור איטי מהרגיל. נסו לשלוח שוב בעוד רגע."
	case errors.Is(err, client.ErrUnavailable):
		return "השירות עמוס כרגע. נסו שוב בעוד כמה דקות."
	case errors.Is(err, client.ErrSessionExpired):
		return "השיחה התיישנה. סגרו ופתחו את הצ'אט מחדש."
	case errors.Is(err, ErrSendInFlight):
		return "ההודעה הקודמת עדיין בדרך."
	default:
		return "אופס, משהו השתבש. נסו שוב."
	}
}
