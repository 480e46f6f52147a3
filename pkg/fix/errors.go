package fix

import "errors"

var (
	// ErrEmptyInput is returned when ParseFIX is given an empty byte slice.
	ErrEmptyInput = errors.New("fix: empty input")

	// ErrDuplicateTag is returned by Nest when the same tag appears twice
	// at the same nesting level outside a repeating group.
	ErrDuplicateTag = errors.New("fix: duplicate tag at same level")

	// ErrGroupCountMismatch is returned by Nest when a group's NumInGroup
	// value is not a non-negative decimal count. A stream that holds fewer
	// occurrences than the count yields ErrTruncatedGroup instead; extra
	// occurrences beyond the count are not detected here.
	ErrGroupCountMismatch = errors.New("fix: group count mismatch")

	// ErrTruncatedGroup is returned by Nest when the flat tag stream ends
	// in the middle of a group occurrence.
	ErrTruncatedGroup = errors.New("fix: truncated group")
)
