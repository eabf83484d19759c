package allocbench

import "errors"

// ErrMissingAllocator is returned when a result file has no data for one of
// the two compared allocators.
var ErrMissingAllocator = errors.New("allocbench: missing allocator data")

// ErrEmptySample is returned when a statistic is asked of an empty sequence.
var ErrEmptySample = errors.New("allocbench: empty sample")

// ErrBadFormat is returned for result files that cannot be parsed.
var ErrBadFormat = errors.New("allocbench: malformed result file")
