package voice

import "errors"

// Common errors for the voice collection and installer queue.
var (
	ErrAlreadyDiscovered = errors.New("voice collection is already populated")
	ErrInstallerClosed   = errors.New("installer queue is closed")
	ErrUnknownUnit       = errors.New("no such voice")
)
