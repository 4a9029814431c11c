package ids

import "errors"

// ErrParseEventID is the single parse-error kind for malformed event-id
// wire forms; the offending input is appended by the caller via %w/%s.
var ErrParseEventID = errors.New("cannot parse eventId")
