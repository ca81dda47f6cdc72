package services

import (
	"errors"
	"fmt"

	"github.com/cppla/standupbot/slackbot"
	"github.com/cppla/standupbot/store"
)

// Client errors. Controllers match them with errors.Is.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrStandupNotFound    = errors.New("standup not found")
	ErrInvalidDate        = errors.New("Invalid date format. Use format yyyy-mm-dd")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrDuplicate          = errors.New("already exists")
	ErrTeamInUse          = errors.New("team still has a standup")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PlatformError is a failed Slack Web API call. Code is Slack's error string.
type PlatformError struct {
	Op   string
	Code string
	Err  error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("slack %s failed: %s", e.Op, e.Code)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

func platformError(op string, err error) *PlatformError {
	return &PlatformError{Op: op, Code: slackbot.ErrorCode(err), Err: err}
}

// notFound swaps store.ErrNotFound for the domain sentinel and passes other errors through.
func notFound(err, sentinel error) error {
	if errors.Is(err, store.ErrNotFound) {
		return sentinel
	}
	return err
}

func duplicate(err error, what string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return err
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}
