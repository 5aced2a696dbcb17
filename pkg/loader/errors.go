package loader

import (
	"github.com/pkg/errors"
)

// A failed fetch is fatal for that sample; there are no retries here. The
// two sentinels let callers tell corrupt dataset annotations apart from bugs
// in this package.
var (
	// ErrBadAnnotation means the upstream record is corrupt, e.g. an
	// annotation coordinate is negative before cropping.
	ErrBadAnnotation = errors.New("bad annotation data")

	// ErrInvariant means an internal invariant was violated. This is a bug
	// in the pipeline, not in the dataset.
	ErrInvariant = errors.New("internal invariant violation")
)
