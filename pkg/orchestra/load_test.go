package orchestra

import (
	"strings"
	"testing"
)

func TestLoadRepositorySample(t *testing.T) {
	repo, err := LoadRepository(strings.NewReader(SampleOrchestraXML))
	if err != nil {
		t.Fatal(err)
	}

	if len(repo.Fields) != 10 {
		t.Fatalf("len(Fields) = %d, want 10", len(repo.Fields))
	}
	f55, ok := repo.Fields[55]
	if !ok || f55.Name != "Symbol" || f55.Type != "String" {
		t.Fatalf("field 55 = %+v", f55)
	}

	if len(repo.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(repo.Groups))
	}
	g := repo.Groups[9453]
	if g.NumInGroupFieldID != 453 {
		t.Fatalf("group 9453 NumInGroupFieldID = %d, want 453 (synthetic id must differ from count tag)", g.NumInGroupFieldID)
	}
	if len(g.Refs) != 3 {
		t.Fatalf("group 9453 refs = %d, want 3", len(g.Refs))
	}

	msg, ok := repo.MessagesByName["SecurityDefinition"]
	if !ok {
		t.Fatal("SecurityDefinition not found by name")
	}
	if msg.ID != 37 || msg.MsgType != "d" {
		t.Fatalf("SecurityDefinition = %+v", msg)
	}
	if len(msg.Refs) != 4 {
		t.Fatalf("SecurityDefinition refs = %d, want 4", len(msg.Refs))
	}
	if msg.Refs[3].Kind != GroupRefKind || msg.Refs[3].ID != 9454 {
		t.Fatalf("SecurityDefinition ref[3] = %+v, want groupRef 9454", msg.Refs[3])
	}
	if msg.Refs[1].Presence != PresenceOptional {
		t.Fatalf("SecurityDefinition ref[1] presence = %v, want optional", msg.Refs[1].Presence)
	}
}

func TestLoadRepositoryNoMessages(t *testing.T) {
	xmlDoc := `<fixr:repository xmlns:fixr="http://fixprotocol.io/2020/orchestra/repository">
  <fixr:fields><fixr:field id="1" name="Account" type="String"/></fixr:fields>
</fixr:repository>`
	_, err := LoadRepository(strings.NewReader(xmlDoc))
	if err != ErrNoMessages {
		t.Fatalf("got %v, want ErrNoMessages", err)
	}
}

func TestLoadRepositoryMalformedXML(t *testing.T) {
	_, err := LoadRepository(strings.NewReader("<fixr:repository><unterminated"))
	if err == nil {
		t.Fatal("expected parse error for malformed XML")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("got %T, want *ParseError", err)
	}
}
