package sbe

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/NethermindEth/fix-descriptor/pkg/fix"
	"github.com/NethermindEth/fix-descriptor/pkg/metrics"
	"github.com/NethermindEth/fix-descriptor/pkg/sbeschema"
)

// Decode is the exact inverse of Encode: it reads the header, asserts
// templateId, walks the root block by offsets, then the variable section in
// declaration order, then groups recursively. Zero/null-valued
// scalars and empty data fields are omitted from the result.
func Decode(schema *sbeschema.Schema, messageID int, data []byte) (*fix.Descriptor, error) {
	defer metrics.Default.DecodeLatency.Start()()

	if len(data) < headerSize {
		metrics.Default.DecodeErrors.Inc()
		return nil, &DecodeError{Reason: "header truncated", Err: ErrTruncated}
	}
	templateID := int(binary.LittleEndian.Uint16(data[2:]))
	if templateID != messageID {
		metrics.Default.DecodeErrors.Inc()
		return nil, &DecodeError{Reason: "template id mismatch", Err: ErrTemplateMismatch}
	}

	layout, ok := schema.ByTemplateID(messageID)
	if !ok {
		metrics.Default.DecodeErrors.Inc()
		return nil, ErrUnknownMessage
	}

	desc, _, err := decodeSection(layout.Fields, layout.DataFields, layout.Groups, layout.BlockLength, data, headerSize)
	if err != nil {
		metrics.Default.DecodeErrors.Inc()
		return nil, err
	}
	metrics.Default.MessagesDecoded.Inc()
	return desc, nil
}

func decodeSection(fields []sbeschema.FixedField, dataFields []sbeschema.DataField, groups []sbeschema.GroupLayout, blockLength int, data []byte, cursor int) (*fix.Descriptor, int, error) {
	if cursor+blockLength > len(data) {
		return nil, cursor, &DecodeError{Reason: "fixed block overruns buffer", Err: ErrTruncated}
	}
	block := data[cursor : cursor+blockLength]
	cursor += blockLength

	desc := fix.NewDescriptor()
	for _, f := range fields {
		bits := readSized(block, f.Offset, f.Kind.Size())
		if bits == f.NullValueBits() || bits == 0 {
			continue
		}
		desc.SetScalar(f.Tag, []byte(formatFieldValue(f, bits)))
	}

	for _, d := range dataFields {
		if cursor+2 > len(data) {
			return nil, cursor, &DecodeError{Reason: fmt.Sprintf("data field %d length header overruns buffer", d.Tag), Err: ErrTruncated}
		}
		length := int(binary.LittleEndian.Uint16(data[cursor:]))
		cursor += 2
		if cursor+length > len(data) {
			return nil, cursor, &DecodeError{Reason: fmt.Sprintf("data field %d declared length exceeds remaining bytes", d.Tag), Err: ErrTruncated}
		}
		value := data[cursor : cursor+length]
		cursor += length
		trimmed := bytes.TrimRight(value, "\x00")
		if len(trimmed) == 0 {
			continue
		}
		desc.SetScalar(d.Tag, append([]byte(nil), trimmed...))
	}

	for _, g := range groups {
		if cursor+4 > len(data) {
			return nil, cursor, &DecodeError{Reason: fmt.Sprintf("group %q dimension header overruns buffer", g.Name), Err: ErrTruncated}
		}
		groupBlockLength := int(binary.LittleEndian.Uint16(data[cursor:]))
		numInGroup := int(binary.LittleEndian.Uint16(data[cursor+2:]))
		cursor += 4

		entries := make([]*fix.Descriptor, 0, numInGroup)
		for i := 0; i < numInGroup; i++ {
			entry, nc, err := decodeSection(g.Fields, g.DataFields, g.NestedGroups, groupBlockLength, data, cursor)
			if err != nil {
				return nil, cursor, err
			}
			cursor = nc
			entries = append(entries, entry)
		}
		// An empty group is omitted the same way zero/null scalars are.
		if len(entries) > 0 {
			desc.SetGroup(g.CountTag, entries)
		}
	}

	return desc, cursor, nil
}

func readSized(buf []byte, offset, size int) uint64 {
	switch size {
	case 1:
		return uint64(buf[offset])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf[offset:]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf[offset:]))
	case 8:
		return binary.LittleEndian.Uint64(buf[offset:])
	default:
		return 0
	}
}

// formatFieldValue renders a decoded scalar as text: the arithmetic value
// for every numeric kind, with scaling left unreversed (the round-trip
// contract is numeric equality at tolerance, not string equality).
func formatFieldValue(f sbeschema.FixedField, bits uint64) string {
	switch {
	case f.IsBoolean:
		if bits == 1 {
			return "true"
		}
		return "false"
	case f.IsTimestamp:
		return fmt.Sprintf("%017d", bits)
	case f.Kind == sbeschema.KindChar:
		return string([]byte{byte(bits)})
	case f.Kind == sbeschema.KindInt64:
		return strconv.FormatInt(int64(bits), 10)
	case f.Kind == sbeschema.KindDouble:
		return strconv.FormatFloat(math.Float64frombits(bits), 'f', -1, 64)
	default:
		return strconv.FormatUint(bits, 10)
	}
}
