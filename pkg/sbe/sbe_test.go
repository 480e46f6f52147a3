package sbe

import (
	"strings"
	"testing"

	"github.com/NethermindEth/fix-descriptor/pkg/fix"
	"github.com/NethermindEth/fix-descriptor/pkg/orchestra"
	"github.com/NethermindEth/fix-descriptor/pkg/sbeschema"
)

func mustCompileSampleSchema(t *testing.T) *sbeschema.Schema {
	t.Helper()
	repo, err := orchestra.LoadRepository(strings.NewReader(orchestra.SampleOrchestraXML))
	if err != nil {
		t.Fatalf("LoadRepository: %v", err)
	}
	xmlBytes, err := sbeschema.CompileToSBE(repo, sbeschema.CompileOptions{})
	if err != nil {
		t.Fatalf("CompileToSBE: %v", err)
	}
	schema, err := sbeschema.LoadSchema(strings.NewReader(string(xmlBytes)))
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	return schema
}

// TestEncodeDecodeSecurityDefinition round-trips a SecurityDefinition
// through encode and decode, including the scaled CouponRate.
func TestEncodeDecodeSecurityDefinition(t *testing.T) {
	schema := mustCompileSampleSchema(t)

	raw := "8=FIX.4.4|35=d|55=USTB-2030-11-15|223=4.250|15=USD|10=000"
	flat, err := fix.ParseFIX([]byte(raw), fix.SeparatorPipe)
	if err != nil {
		t.Fatalf("ParseFIX: %v", err)
	}

	groups := map[int]fix.GroupSpec{
		454: {CountTag: 454, FieldTags: []int{455}},
	}
	desc, err := fix.Nest(flat, groups)
	if err != nil {
		t.Fatalf("Nest: %v", err)
	}

	encoded, err := Encode(schema, 37, desc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) < 8 {
		t.Fatalf("encoded length = %d, want >= 8", len(encoded))
	}

	decoded, err := Decode(schema, 37, encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	assertScalar(t, decoded, 55, "USTB-2030-11-15")
	assertScalar(t, decoded, 15, "USD")
	assertScalar(t, decoded, 223, "42500")
}

// TestEncodeDecodeRepeatingGroup round-trips a NewOrderSingle with a
// two-entry parties group.
func TestEncodeDecodeRepeatingGroup(t *testing.T) {
	schema := mustCompileSampleSchema(t)

	raw := "453=2|448=PARTY1|447=D|452=1|448=PARTY2|447=D|452=3"
	flat, err := fix.ParseFIX([]byte(raw), fix.SeparatorPipe)
	if err != nil {
		t.Fatalf("ParseFIX: %v", err)
	}

	groups := map[int]fix.GroupSpec{
		453: {CountTag: 453, FieldTags: []int{448, 447, 452}},
	}
	desc, err := fix.Nest(flat, groups)
	if err != nil {
		t.Fatalf("Nest: %v", err)
	}

	encoded, err := Encode(schema, 14, desc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(schema, 14, encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	node, ok := decoded.Get(453)
	if !ok || !node.IsGroup() {
		t.Fatalf("tag 453 = %+v, want group node", node)
	}
	if len(node.Group) != 2 {
		t.Fatalf("len(Group) = %d, want 2", len(node.Group))
	}
	assertScalar(t, node.Group[0], 448, "PARTY1")
	assertScalar(t, node.Group[0], 447, "D")
	assertScalar(t, node.Group[0], 452, "1")
	assertScalar(t, node.Group[1], 448, "PARTY2")
	assertScalar(t, node.Group[1], 447, "D")
	assertScalar(t, node.Group[1], 452, "3")
}

func TestEncodeUnknownMessageID(t *testing.T) {
	schema := mustCompileSampleSchema(t)
	desc := fix.NewDescriptor()
	if _, err := Encode(schema, 999, desc); err != ErrUnknownMessage {
		t.Fatalf("got %v, want ErrUnknownMessage", err)
	}
}

func TestDecodeTemplateMismatch(t *testing.T) {
	schema := mustCompileSampleSchema(t)
	desc := fix.NewDescriptor()
	desc.SetScalar(55, []byte("AAPL"))
	encoded, err := Encode(schema, 37, desc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(schema, 14, encoded); err == nil {
		t.Fatal("expected template mismatch error")
	}
}

func TestDecodeTruncatedInput(t *testing.T) {
	schema := mustCompileSampleSchema(t)
	_, err := Decode(schema, 37, []byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error decoding truncated input")
	}
}

func assertScalar(t *testing.T, desc *fix.Descriptor, tag int, want string) {
	t.Helper()
	node, ok := desc.Get(tag)
	if !ok {
		t.Fatalf("tag %d missing", tag)
	}
	if node.IsGroup() {
		t.Fatalf("tag %d is a group, want scalar", tag)
	}
	if string(node.Scalar) != want {
		t.Fatalf("tag %d = %q, want %q", tag, node.Scalar, want)
	}
}
