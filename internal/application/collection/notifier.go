package collection

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/i18n"
)

// Level is the severity of a user notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient user-facing message (toast/snackbar)
type Notification struct {
	Level    Level
	Resource string
	Key      string
	Message  string
	At       time.Time
}

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(n Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

// Localizer renders message keys in the user's language
type Localizer interface {
	Message(key string, args ...any) string
}

// serverMessager is implemented by transport errors carrying the backend's message
type serverMessager interface {
	ServerMessage() string
}

// messageKeyer is implemented by errors that map to a localized generic message
type messageKeyer interface {
	MessageKey() string
}

// Describe turns an error into the text shown to the user: a server message
// verbatim when present, otherwise a localized message for the error class,
// otherwise the localized fallback.
func Describe(loc Localizer, err error, fallbackKey string) string {
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		return loc.Message(i18n.KeyValidationFailed, strings.Join(verr.Fields(), ", "))
	}
	var sm serverMessager
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	var mk messageKeyer
	if errors.As(err, &mk) && mk.MessageKey() != "" {
		return loc.Message(mk.MessageKey())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return loc.Message(i18n.KeyTimeout)
	}
	return loc.Message(fallbackKey)
}
