package fix

import "bytes"

// GroupSpec describes the fixed field layout of one occurrence of a
// repeating group, as known from a schema: CountTag is the FIX NoXxx tag
// that carries the occurrence count, and FieldTags is the ordered list of
// tags present in every occurrence (a tag in FieldTags that is itself a key
// of the Groups map passed to Nest is treated as a nested group).
type GroupSpec struct {
	CountTag  int
	FieldTags []int
}

// Nest reconstructs a nested Descriptor from a flat, declaration-ordered
// tag=value stream, using groups to recognize repeating-group boundaries.
// groups is keyed by count tag; a tag encountered in the stream that is a
// key of groups is treated as starting a repeating group of that many
// occurrences, each consuming len(spec.FieldTags) further logical fields
// (recursively, for nested groups). This is the schema-guided counterpart
// to the descriptor-to-leaves path, which stays independent of SBE --
// Nest depends only on group shape, never on SBE wire offsets.
func Nest(flat []TagValue, groups map[int]GroupSpec) (*Descriptor, error) {
	cursor := 0
	d, err := parseLevel(flat, &cursor, nil, groups)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// parseLevel parses one nesting level. If fieldTags is nil, it is the
// top-level message body and consumes the entire remaining stream; if
// fieldTags is non-nil, it is a single group occurrence and consumes
// exactly len(fieldTags) logical fields.
func parseLevel(flat []TagValue, cursor *int, fieldTags []int, groups map[int]GroupSpec) (*Descriptor, error) {
	d := NewDescriptor()

	consume := func(want int) (TagValue, bool) {
		if *cursor >= len(flat) {
			return TagValue{}, false
		}
		tv := flat[*cursor]
		if want != 0 && tv.Tag != want {
			return TagValue{}, false
		}
		return tv, true
	}

	if fieldTags == nil {
		for *cursor < len(flat) {
			tv, _ := consume(0)
			if err := appendField(d, flat, cursor, tv.Tag, groups); err != nil {
				return nil, err
			}
		}
		return d, nil
	}

	for _, want := range fieldTags {
		tv, ok := consume(want)
		if !ok {
			return nil, ErrTruncatedGroup
		}
		if err := appendField(d, flat, cursor, tv.Tag, groups); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func appendField(d *Descriptor, flat []TagValue, cursor *int, tag int, groups map[int]GroupSpec) error {
	spec, isGroup := groups[tag]
	if !isGroup {
		if _, exists := d.Get(tag); exists {
			return ErrDuplicateTag
		}
		d.SetScalar(tag, flat[*cursor].Value)
		*cursor++
		return nil
	}

	if _, exists := d.Get(tag); exists {
		return ErrDuplicateTag
	}
	count, ok := parseUint(flat[*cursor].Value)
	if !ok {
		return ErrGroupCountMismatch
	}
	*cursor++

	entries := make([]*Descriptor, 0, count)
	for i := 0; i < count; i++ {
		entry, err := parseLevel(flat, cursor, spec.FieldTags, groups)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	d.SetGroup(tag, entries)
	return nil
}

func parseUint(b []byte) (int, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
