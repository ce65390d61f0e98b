package navigator

import "github.com/pkg/errors"

// ErrStaleInput is returned when no localization update has arrived within the
// configured timeout. The cycle's output is the stop command.
var ErrStaleInput = errors.New("localization input is stale")

// ErrNoLaneGeometry is returned when planning is attempted before any lane geometry
// has been received.
var ErrNoLaneGeometry = errors.New("no lane geometry received")
