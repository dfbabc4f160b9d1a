package cli

import (
	"errors"

	"github.com/generic19/FastersApp/internal/countdown"
	"github.com/generic19/FastersApp/internal/prayer"
)

// Exit codes for the failure states a user can act on.
const (
	ExitError          = 1
	ExitNoLocation     = 2
	ExitInvalidSetting = 3
	ExitNoSolarEvent   = 4
)

// Describe turns an error into the message shown to the user.
func Describe(err error) string {
	switch {
	case errors.Is(err, countdown.ErrNoLocation):
		return "no location set. Pass --latitude and --longitude, set a city with a locations file, " +
			"or allow IP detection (" + err.Error() + ")"
	case errors.Is(err, prayer.ErrInvalidSettings):
		return err.Error() + ". Check 'fasters config' or choose --method auto"
	case errors.Is(err, countdown.ErrNoSolarEvent):
		return "the sun does not reach the required angle at this latitude today, " +
			"so the current fasting interval cannot be determined"
	default:
		return err.Error()
	}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, countdown.ErrNoLocation):
		return ExitNoLocation
	case errors.Is(err, prayer.ErrInvalidSettings):
		return ExitInvalidSetting
	case errors.Is(err, countdown.ErrNoSolarEvent):
		return ExitNoSolarEvent
	default:
		return ExitError
	}
}
