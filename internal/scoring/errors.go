package scoring

import (
	"fmt"
	"time"
)

// StaleProfileError rejects a writer whose clock precedes the profile's
// last mutation. Callers reload the profile and retry.
type StaleProfileError struct {
	WriterTime  time.Time
	LastUpdated time.Time
}

func (e *StaleProfileError) Error() string {
	return fmt.Sprintf("stale profile write: writer clock %s precedes last update %s",
		e.WriterTime.Format(time.RFC3339), e.LastUpdated.Format(time.RFC3339))
}
