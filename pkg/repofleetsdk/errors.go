package repofleetsdk

import "errors"

var (
	ErrConfigPathRequired = errors.New("repofleet-sdk: config path required")
	ErrRootRequired       = errors.New("repofleet-sdk: root directory required")
	ErrSyncFailed         = errors.New("repofleet-sdk: one or more repositories failed to sync")
)
