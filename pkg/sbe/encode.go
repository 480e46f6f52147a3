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

const headerSize = 8

// Encode serializes an ordered descriptor into header || root_block ||
// variable_section bytes for the given message template id.
// Tags in the descriptor that are not known fixed fields, data fields, or
// group count tags of the message are silently dropped (forward-compat
// with schema versions missing later FIX extensions).
func Encode(schema *sbeschema.Schema, messageID int, desc *fix.Descriptor) ([]byte, error) {
	defer metrics.Default.EncodeLatency.Start()()

	layout, ok := schema.ByTemplateID(messageID)
	if !ok {
		metrics.Default.EncodeErrors.Inc()
		return nil, ErrUnknownMessage
	}

	body, err := encodeSection(layout.Fields, layout.DataFields, layout.Groups, layout.BlockLength, desc)
	if err != nil {
		metrics.Default.EncodeErrors.Inc()
		return nil, err
	}
	metrics.Default.MessagesEncoded.Inc()

	var out bytes.Buffer
	out.Grow(headerSize + len(body))
	var header [headerSize]byte
	binary.LittleEndian.PutUint16(header[0:], uint16(layout.BlockLength))
	binary.LittleEndian.PutUint16(header[2:], uint16(layout.TemplateID))
	binary.LittleEndian.PutUint16(header[4:], uint16(schema.SchemaID))
	binary.LittleEndian.PutUint16(header[6:], uint16(schema.Version))
	out.Write(header[:])
	out.Write(body)
	return out.Bytes(), nil
}

// encodeSection writes one block (root or one group element): the
// fixed-width block, its variable-length data fields, then its nested
// groups, each recursively encoded the same way.
func encodeSection(fields []sbeschema.FixedField, dataFields []sbeschema.DataField, groups []sbeschema.GroupLayout, blockLength int, desc *fix.Descriptor) ([]byte, error) {
	block := make([]byte, blockLength)
	for _, f := range fields {
		putSized(block, f.Offset, f.Kind.Size(), f.NullValueBits())
	}
	for _, f := range fields {
		node, ok := desc.Get(f.Tag)
		if !ok || node.IsGroup() {
			continue
		}
		if err := writeField(block, f, node.Scalar); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	out.Write(block)

	for _, d := range dataFields {
		var value []byte
		if node, ok := desc.Get(d.Tag); ok && !node.IsGroup() {
			value = node.Scalar
		}
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(value)))
		out.Write(lenBuf[:])
		out.Write(value)
	}

	for _, g := range groups {
		var entries []*fix.Descriptor
		if node, ok := desc.Get(g.CountTag); ok && node.IsGroup() {
			entries = node.Group
		}
		var dimBuf [4]byte
		binary.LittleEndian.PutUint16(dimBuf[0:], uint16(g.BlockLength))
		binary.LittleEndian.PutUint16(dimBuf[2:], uint16(len(entries)))
		out.Write(dimBuf[:])
		for _, entry := range entries {
			elemBytes, err := encodeSection(g.Fields, g.DataFields, g.NestedGroups, g.BlockLength, entry)
			if err != nil {
				return nil, err
			}
			out.Write(elemBytes)
		}
	}

	return out.Bytes(), nil
}

func putSized(buf []byte, offset, size int, bits uint64) {
	switch size {
	case 1:
		buf[offset] = byte(bits)
	case 2:
		binary.LittleEndian.PutUint16(buf[offset:], uint16(bits))
	case 4:
		binary.LittleEndian.PutUint32(buf[offset:], uint32(bits))
	case 8:
		binary.LittleEndian.PutUint64(buf[offset:], bits)
	}
}

func writeField(buf []byte, f sbeschema.FixedField, raw []byte) error {
	if raw == nil {
		return nil
	}
	switch {
	case f.IsBoolean:
		b, err := parseBoolean(raw)
		if err != nil {
			return &EncodeError{Tag: f.Tag, Reason: err.Error()}
		}
		v := byte(0)
		if b {
			v = 1
		}
		buf[f.Offset] = v
	case f.IsTimestamp:
		ts, err := parseTimestamp(raw)
		if err != nil {
			return &EncodeError{Tag: f.Tag, Reason: err.Error()}
		}
		binary.LittleEndian.PutUint64(buf[f.Offset:], ts)
	case f.Kind == sbeschema.KindChar:
		c, err := parseChar(raw)
		if err != nil {
			return &EncodeError{Tag: f.Tag, Reason: err.Error()}
		}
		buf[f.Offset] = c
	case f.Kind == sbeschema.KindUint32:
		v, err := parseUint32Value(raw)
		if err != nil {
			return &EncodeError{Tag: f.Tag, Reason: err.Error()}
		}
		binary.LittleEndian.PutUint32(buf[f.Offset:], v)
	case f.Kind == sbeschema.KindUint16:
		v, err := parseUint32Value(raw)
		if err != nil {
			return &EncodeError{Tag: f.Tag, Reason: err.Error()}
		}
		if v > math.MaxUint16 {
			return &EncodeError{Tag: f.Tag, Reason: fmt.Sprintf("value %d overflows uint16", v)}
		}
		binary.LittleEndian.PutUint16(buf[f.Offset:], uint16(v))
	case f.Kind == sbeschema.KindInt64:
		v, err := parseScaledInt(raw, f.Scale)
		if err != nil {
			return &EncodeError{Tag: f.Tag, Reason: err.Error()}
		}
		binary.LittleEndian.PutUint64(buf[f.Offset:], uint64(v))
	case f.Kind == sbeschema.KindUint64:
		v, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return &EncodeError{Tag: f.Tag, Reason: err.Error()}
		}
		binary.LittleEndian.PutUint64(buf[f.Offset:], v)
	case f.Kind == sbeschema.KindDouble:
		v, err := parseFloat64Value(raw)
		if err != nil {
			return &EncodeError{Tag: f.Tag, Reason: err.Error()}
		}
		binary.LittleEndian.PutUint64(buf[f.Offset:], math.Float64bits(v))
	default:
		return &EncodeError{Tag: f.Tag, Reason: fmt.Sprintf("unsupported kind %q", f.Kind)}
	}
	return nil
}
