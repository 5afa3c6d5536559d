package update

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// fallbackCheckMessage is used when a failed check carries no message.
const fallbackCheckMessage = "Error occurred"

// Checker is the part of Native used by CheckAndReturnInfo.
type Checker interface {
	CheckForUpdate(ctx context.Context) (CheckResult, error)
}

// InfoFromEvent derives a fresh Info from a pushed event, stamped with now.
func InfoFromEvent(running CurrentlyRunning, event UpdateEvent, now time.Time) Info {
	info := Info{
		CurrentlyRunning:       running,
		LastCheckForUpdateTime: &now,
	}
	switch event.Type {
	case UpdateEventNoUpdateAvailable:
	case UpdateEventUpdateAvailable:
		info.AvailableUpdate = AvailableUpdateFromManifest(event.Manifest)
	case UpdateEventError:
		info.Err = errors.New(event.Message)
	default:
		info.Err = fmt.Errorf("unknown update event type %q", event.Type)
	}
	return info
}

// CheckAndReturnInfo asks the checker for an update and folds the answer
// into a fresh Info. It never fails: a failed check is reported through
// Info.Err. now is called once the check has finished.
func CheckAndReturnInfo(ctx context.Context, checker Checker, running CurrentlyRunning, now func() time.Time) Info {
	res, err := checker.CheckForUpdate(ctx)
	checkedAt := now()
	info := Info{
		CurrentlyRunning:       running,
		LastCheckForUpdateTime: &checkedAt,
	}
	if err != nil {
		if err.Error() == "" {
			err = errors.New(fallbackCheckMessage)
		}
		info.Err = err
		return info
	}
	if res.IsAvailable {
		info.AvailableUpdate = AvailableUpdateFromManifest(res.Manifest)
	}
	return info
}
