package sync

import (
	"errors"
	"fmt"

	"github.com/pegwheel/pegwheel/pkg/game/constants"
)

// ErrStoreUnavailable means the manager was built without a document
// store; every remote operation fails with it.
var ErrStoreUnavailable = errors.New("document store is not available")

type ErrInvalidPlayerCount struct {
	Count int
}

func (e *ErrInvalidPlayerCount) Error() string {
	return fmt.Sprintf("invalid player count %d (want %d to %d)", e.Count, constants.MinOnlinePlayers, constants.MaxPlayers)
}

func IsInvalidPlayerCount(err error) bool {
	var target *ErrInvalidPlayerCount
	return errors.As(err, &target)
}
