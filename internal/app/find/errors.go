package find

import "errors"

var ErrRootRequired = errors.New("tree root is required")
