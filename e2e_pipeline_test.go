// Package e2e_test provides end-to-end tests that exercise the full
// conversion pipeline: Orchestra XML -> SBE schema -> FIX parse ->
// encode -> decode -> leaf enumeration -> Merkle root -> proof verification.
package e2e_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NethermindEth/fix-descriptor/pkg/fix"
	"github.com/NethermindEth/fix-descriptor/pkg/merkle"
	"github.com/NethermindEth/fix-descriptor/pkg/orchestra"
	"github.com/NethermindEth/fix-descriptor/pkg/sbe"
	"github.com/NethermindEth/fix-descriptor/pkg/sbeschema"
)

// TestE2ESecurityDefinitionLifecycle exercises the complete lifecycle:
// compile schema -> parse FIX -> nest -> encode -> decode -> merkleize ->
// prove and verify every leaf.
func TestE2ESecurityDefinitionLifecycle(t *testing.T) {
	repo, err := orchestra.LoadRepository(strings.NewReader(orchestra.SampleOrchestraXML))
	if err != nil {
		t.Fatalf("LoadRepository: %v", err)
	}
	schemaXML, err := sbeschema.CompileToSBE(repo, sbeschema.CompileOptions{})
	if err != nil {
		t.Fatalf("CompileToSBE: %v", err)
	}
	schema, err := sbeschema.LoadSchema(bytes.NewReader(schemaXML))
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}

	raw := "8=FIX.4.4|35=d|55=USTB-2030-11-15|223=4.250|15=USD|454=2|455=US912810TM09|455=912810TM0|10=000"
	flat, err := fix.ParseFIX([]byte(raw), fix.SeparatorAuto)
	if err != nil {
		t.Fatalf("ParseFIX: %v", err)
	}

	msg := repo.MessagesByName["SecurityDefinition"]
	desc, err := fix.Nest(flat, repo.GroupSpecs(msg))
	if err != nil {
		t.Fatalf("Nest: %v", err)
	}

	encoded, err := sbe.Encode(schema, msg.ID, desc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := sbe.Decode(schema, msg.ID, encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// Business fields survive the round trip; the scaled decimal comes
	// back as its on-wire integer.
	if v, _ := decoded.Get(55); string(v.Scalar) != "USTB-2030-11-15" {
		t.Fatalf("tag 55 = %q, want USTB-2030-11-15", v.Scalar)
	}
	if v, _ := decoded.Get(15); string(v.Scalar) != "USD" {
		t.Fatalf("tag 15 = %q, want USD", v.Scalar)
	}
	if v, _ := decoded.Get(223); string(v.Scalar) != "42500" {
		t.Fatalf("tag 223 = %q, want 42500", v.Scalar)
	}
	altIDs, _ := decoded.Get(454)
	if !altIDs.IsGroup() || len(altIDs.Group) != 2 {
		t.Fatalf("tag 454 = %+v, want a 2-entry group", altIDs)
	}

	// The descriptor-to-leaves path is independent of SBE: merkleize the
	// nested input descriptor directly.
	leaves, err := merkle.EnumerateLeaves(desc)
	if err != nil {
		t.Fatalf("EnumerateLeaves: %v", err)
	}
	// 55, 223, 15, [454,0,455], [454,1,455].
	if len(leaves) != 5 {
		t.Fatalf("len(leaves) = %d, want 5", len(leaves))
	}

	hashes := make([][]byte, len(leaves))
	for i, l := range leaves {
		hashes[i] = l.LeafHash
	}
	tree := merkle.Build(hashes)

	for i, leaf := range leaves {
		proof, directions, err := tree.Prove(i)
		if err != nil {
			t.Fatalf("Prove(%d): %v", i, err)
		}
		if !merkle.VerifyLeaf(tree.Root(), leaf, proof, directions) {
			t.Fatalf("leaf %d (path %v) failed to verify", i, leaf.Path)
		}
		// A proof for one leaf must not verify another leaf's value.
		other := leaves[(i+1)%len(leaves)]
		if merkle.Verify(tree.Root(), other.PathCBOR, other.Value, proof, directions) {
			t.Fatalf("leaf %d proof verified against leaf %d", i, (i+1)%len(leaves))
		}
	}
}

// TestE2ESchemaFileCache writes a compiled schema to disk and loads it
// twice through the cached path, asserting both loads agree.
func TestE2ESchemaFileCache(t *testing.T) {
	repo, err := orchestra.LoadRepository(strings.NewReader(orchestra.SampleOrchestraXML))
	if err != nil {
		t.Fatalf("LoadRepository: %v", err)
	}
	schemaXML, err := sbeschema.CompileToSBE(repo, sbeschema.CompileOptions{})
	if err != nil {
		t.Fatalf("CompileToSBE: %v", err)
	}

	path := filepath.Join(t.TempDir(), "schema.xml")
	if err := os.WriteFile(path, schemaXML, 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := sbeschema.LoadSchemaFile(path)
	if err != nil {
		t.Fatalf("LoadSchemaFile: %v", err)
	}
	second, err := sbeschema.LoadSchemaFile(path)
	if err != nil {
		t.Fatalf("LoadSchemaFile (cached): %v", err)
	}
	if first != second {
		t.Fatal("second load of an unchanged file must return the cached schema")
	}

	if _, ok := first.ByTemplateID(37); !ok {
		t.Fatal("cached schema missing template 37")
	}
}
