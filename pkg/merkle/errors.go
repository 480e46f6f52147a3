package merkle

import "errors"

// ErrIndexOutOfRange is raised when a proof is requested for a leaf index
// outside the tree's leaf count.
var ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")
