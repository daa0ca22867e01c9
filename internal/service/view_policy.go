package service

// ViewPolicy decides whether a view event counts toward a content item's view
// total. Inputs are the actor's prior-view state and the event's metadata; the
// policy is pluggable so monetization rules can change without touching the
// ledger.
type ViewPolicy func(priorViewExists bool, durationSeconds int, isComplete bool) bool

// DefaultViewPolicy counts a view when it is the actor's first view of the
// content, or the playback completed, or the watch time reached
// minWatchSeconds.
func DefaultViewPolicy(minWatchSeconds int) ViewPolicy {
	return func(priorViewExists bool, durationSeconds int, isComplete bool) bool {
		if !priorViewExists {
			return true
		}
		if isComplete {
			return true
		}
		return durationSeconds >= minWatchSeconds
	}
}
