package reconcile

import "errors"

var ErrPathOccupied = errors.New("path exists but is not a git repository")
