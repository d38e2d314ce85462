package imagery

import "errors"

// ErrDataUnavailable indicates that no scene passed the cloud filter for a
// period. The caller decides whether to widen the window or skip the period.
var ErrDataUnavailable = errors.New("no usable imagery for period")
