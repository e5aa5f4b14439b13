package imageboard

import (
	"errors"

	"github.com/five82/chanwatch/metadata"
)

var (
	// ErrThreadNotFound is returned by GetThread with FailIfMissing when the
	// server reports the thread as gone.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrNoMetadata is returned by Board metadata accessors when the board
	// has no MetadataSource.
	ErrNoMetadata = errors.New("board metadata not configured")

	ErrUnknownBoard = metadata.ErrUnknownBoard
)
