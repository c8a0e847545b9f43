package process

import "errors"

var (
	// ErrSpawn indicates the external command could not be launched.
	ErrSpawn = errors.New("failed to spawn process")

	// ErrEnumeration indicates the host process list could not be read.
	ErrEnumeration = errors.New("failed to enumerate processes")
)
