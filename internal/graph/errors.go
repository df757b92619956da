package graph

import "errors"

// ErrDisposed names the disposed-cell error kind. No graph operation returns
// it: writes to a disposed cell are dropped, reads return the last value, and
// AddListener on a disposed cell returns a nil handle.
var ErrDisposed = errors.New("reactor: cell is disposed")
