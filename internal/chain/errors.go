package chain

import "errors"

var (
	// ErrNodeCount indicates a chain with fewer than two nodes.
	ErrNodeCount = errors.New("chain: node count must be at least 2")

	// ErrRestLength indicates a non-positive segment rest length.
	ErrRestLength = errors.New("chain: rest length must be positive")

	// ErrParameterBounds indicates a tuning parameter outside its valid range.
	ErrParameterBounds = errors.New("chain: parameter out of valid bounds")

	// ErrInvalidState indicates a node position containing NaN or Inf.
	ErrInvalidState = errors.New("chain: invalid state (NaN or Inf detected)")
)
