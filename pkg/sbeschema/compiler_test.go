package sbeschema

import (
	"errors"
	"strings"
	"testing"

	"github.com/NethermindEth/fix-descriptor/pkg/orchestra"
)

func mustLoadSampleRepo(t *testing.T) *orchestra.Repository {
	t.Helper()
	repo, err := orchestra.LoadRepository(strings.NewReader(orchestra.SampleOrchestraXML))
	if err != nil {
		t.Fatalf("loading sample repository: %v", err)
	}
	return repo
}

func TestCompileToSBERoundTrip(t *testing.T) {
	repo := mustLoadSampleRepo(t)

	xmlBytes, err := CompileToSBE(repo, CompileOptions{})
	if err != nil {
		t.Fatalf("CompileToSBE: %v", err)
	}

	schema, err := LoadSchema(strings.NewReader(string(xmlBytes)))
	if err != nil {
		t.Fatalf("LoadSchema: %v\n%s", err, xmlBytes)
	}

	secDef, ok := schema.ByName("SecurityDefinition")
	if !ok {
		t.Fatal("SecurityDefinition not found in compiled schema")
	}
	if secDef.TemplateID != 37 {
		t.Fatalf("TemplateID = %d, want 37", secDef.TemplateID)
	}

	// field 55 (Symbol, String) is a data field, not fixed.
	for _, f := range secDef.Fields {
		if f.Tag == 55 {
			t.Fatalf("field 55 (String) should be a data field, found in Fields: %+v", f)
		}
	}
	foundSymbol := false
	for _, d := range secDef.DataFields {
		if d.Tag == 55 {
			foundSymbol = true
		}
	}
	if !foundSymbol {
		t.Fatal("field 55 (Symbol) missing from DataFields")
	}

	// field 223 (CouponRate, Price) is a scaled int64 fixed field at offset 0.
	var couponRate *FixedField
	for i := range secDef.Fields {
		if secDef.Fields[i].Tag == 223 {
			couponRate = &secDef.Fields[i]
		}
	}
	if couponRate == nil {
		t.Fatal("field 223 (CouponRate) missing from Fields")
	}
	if couponRate.Kind != KindInt64 || couponRate.Scale != 4 {
		t.Fatalf("CouponRate = %+v, want KindInt64 scale=4", couponRate)
	}
	if couponRate.Presence != PresenceOptional {
		t.Fatalf("CouponRate presence = %v, want optional", couponRate.Presence)
	}

	if len(secDef.Groups) != 1 {
		t.Fatalf("SecurityDefinition groups = %d, want 1", len(secDef.Groups))
	}
	g := secDef.Groups[0]
	if g.CountTag != 454 {
		t.Fatalf("group CountTag = %d, want 454 (numInGroup field id, not synthetic group id 9454)", g.CountTag)
	}

	newOrder, ok := schema.ByName("NewOrderSingle")
	if !ok {
		t.Fatal("NewOrderSingle not found")
	}
	if len(newOrder.Groups) != 1 || newOrder.Groups[0].CountTag != 453 {
		t.Fatalf("NewOrderSingle groups = %+v, want one group with CountTag 453", newOrder.Groups)
	}
	// PartiesGroup: 448 (String, data), 447 (char, fixed), 452 (int, fixed).
	partiesGroup := newOrder.Groups[0]
	if len(partiesGroup.Fields) != 2 {
		t.Fatalf("PartiesGroup fixed fields = %d, want 2", len(partiesGroup.Fields))
	}
	if len(partiesGroup.DataFields) != 1 || partiesGroup.DataFields[0].Tag != 448 {
		t.Fatalf("PartiesGroup data fields = %+v, want one field tagged 448", partiesGroup.DataFields)
	}
}

func TestCompileToSBESelectByName(t *testing.T) {
	repo := mustLoadSampleRepo(t)

	xmlBytes, err := CompileToSBE(repo, CompileOptions{Messages: []string{"NewOrderSingle"}})
	if err != nil {
		t.Fatalf("CompileToSBE: %v", err)
	}
	schema, err := LoadSchema(strings.NewReader(string(xmlBytes)))
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	if len(schema.Messages) != 1 {
		t.Fatalf("Messages = %d, want 1", len(schema.Messages))
	}
	if _, ok := schema.ByName("SecurityDefinition"); ok {
		t.Fatal("SecurityDefinition should not be present when only NewOrderSingle was selected")
	}
}

func TestCompileToSBEUnknownMessageName(t *testing.T) {
	repo := mustLoadSampleRepo(t)
	_, err := CompileToSBE(repo, CompileOptions{Messages: []string{"DoesNotExist"}})
	if err == nil {
		t.Fatal("expected error for unknown message name")
	}
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("got %v (%T), want *SemanticError", err, err)
	}
}

func TestCompileToSBEScalingOverride(t *testing.T) {
	repo := mustLoadSampleRepo(t)
	xmlBytes, err := CompileToSBE(repo, CompileOptions{
		Messages:         []string{"SecurityDefinition"},
		ScalingOverrides: map[string]int{"Price": 6},
	})
	if err != nil {
		t.Fatalf("CompileToSBE: %v", err)
	}
	schema, err := LoadSchema(strings.NewReader(string(xmlBytes)))
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	secDef, _ := schema.ByName("SecurityDefinition")
	for _, f := range secDef.Fields {
		if f.Tag == 223 && f.Scale != 6 {
			t.Fatalf("CouponRate scale = %d, want override 6", f.Scale)
		}
	}
}
