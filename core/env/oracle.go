// Package env supplies ambient conditions (solar irradiance, wind, ambient
// temperature) for any (segment, time) query issued during trajectory
// evaluation. Sources are deterministic so optimizer runs stay reproducible;
// a query outside a source's covered range is reported as unavailable and
// treated by callers as candidate infeasibility, not a fatal error.
package env

import (
	"errors"

	"github.com/msxvi/strategy/core/model"
)

// ErrDataUnavailable indicates the query time falls outside the covered
// range of the data source.
var ErrDataUnavailable = errors.New("environment data unavailable")

// Oracle produces environment samples on demand. Implementations must be
// deterministic: identical (segmentIndex, elapsedS) queries return identical
// samples.
type Oracle interface {
	Sample(segmentIndex int, elapsedS float64) (model.EnvironmentSample, error)
}
