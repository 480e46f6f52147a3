package sbeschema

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/NethermindEth/fix-descriptor/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// LoadSchema parses an SBE XML document into a Schema, recomputing every
// field offset from document order rather than trusting any offset the
// document might (redundantly) carry, and validating that each declared
// blockLength equals the sum of its fixed fields' sizes.
func LoadSchema(r io.Reader) (*Schema, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStartElement(dec)
	if err != nil {
		return nil, &ParseError{Reason: "reading root element", Err: err}
	}
	if root.Name.Local != "messageSchema" {
		return nil, &ParseError{Reason: fmt.Sprintf("unexpected root element %q", root.Name.Local)}
	}

	schema := &Schema{
		SchemaID:       attrInt(root, "id"),
		Version:        attrInt(root, "version"),
		Messages:       make(map[int]*MessageLayout),
		MessagesByName: make(map[string]*MessageLayout),
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: "walking schema body", Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "types":
			if err := dec.Skip(); err != nil {
				return nil, &ParseError{Reason: "skipping types", Err: err}
			}
		case "message":
			msg, err := loadMessage(dec, start)
			if err != nil {
				return nil, err
			}
			schema.Messages[msg.TemplateID] = msg
			schema.MessagesByName[msg.Name] = msg
		default:
			if err := dec.Skip(); err != nil {
				return nil, &ParseError{Reason: "skipping unknown element " + start.Name.Local, Err: err}
			}
		}
	}

	if len(schema.Messages) == 0 {
		return nil, ErrNoMessages
	}
	return schema, nil
}

func loadMessage(dec *xml.Decoder, start xml.StartElement) (*MessageLayout, error) {
	name := attr(start, "name")
	msg := &MessageLayout{
		TemplateID: attrInt(start, "id"),
		Name:       name,
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Reason: "walking message " + name, Err: err}
		}
		if end, ok := tok.(xml.EndElement); ok && end.Name.Local == start.Name.Local {
			break
		}
		child, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch child.Name.Local {
		case "field":
			msg.Fields = append(msg.Fields, loadField(child))
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case "data":
			msg.DataFields = append(msg.DataFields, loadData(child))
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case "group":
			g, err := loadGroup(dec, child)
			if err != nil {
				return nil, err
			}
			msg.Groups = append(msg.Groups, g)
		default:
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		}
	}

	assignOffsets(msg.Fields)
	computed := blockLengthOf(msg.Fields)
	declared := attrInt(start, "blockLength")
	if declared != computed {
		return nil, &SemanticError{
			MessageName: name,
			Reason:      fmt.Sprintf("declared blockLength %d does not match computed %d", declared, computed),
		}
	}
	msg.BlockLength = computed
	return msg, nil
}

func loadGroup(dec *xml.Decoder, start xml.StartElement) (GroupLayout, error) {
	name := attr(start, "name")
	g := GroupLayout{
		CountTag: attrInt(start, "id"),
		Name:     name,
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return GroupLayout{}, &ParseError{Reason: "walking group " + name, Err: err}
		}
		if end, ok := tok.(xml.EndElement); ok && end.Name.Local == start.Name.Local {
			break
		}
		child, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch child.Name.Local {
		case "field":
			g.Fields = append(g.Fields, loadField(child))
			if err := dec.Skip(); err != nil {
				return GroupLayout{}, err
			}
		case "data":
			g.DataFields = append(g.DataFields, loadData(child))
			if err := dec.Skip(); err != nil {
				return GroupLayout{}, err
			}
		case "group":
			nested, err := loadGroup(dec, child)
			if err != nil {
				return GroupLayout{}, err
			}
			g.NestedGroups = append(g.NestedGroups, nested)
		default:
			if err := dec.Skip(); err != nil {
				return GroupLayout{}, err
			}
		}
	}

	assignOffsets(g.Fields)
	computed := blockLengthOf(g.Fields)
	declared := attrInt(start, "blockLength")
	if declared != computed {
		return GroupLayout{}, &SemanticError{
			MessageName: name,
			Reason:      fmt.Sprintf("group declared blockLength %d does not match computed %d", declared, computed),
		}
	}
	g.BlockLength = computed
	return g, nil
}

func loadField(start xml.StartElement) FixedField {
	f := FixedField{
		Tag:  attrInt(start, "id"),
		Name: attr(start, "name"),
		Kind: Kind(attr(start, "type")),
	}
	if attr(start, "presence") == "optional" {
		f.Presence = PresenceOptional
	}
	if s := attr(start, "scale"); s != "" {
		f.Scale, _ = strconv.Atoi(s)
	}
	switch attr(start, "semantic") {
	case "timestamp":
		f.IsTimestamp = true
	case "boolean":
		f.IsBoolean = true
	}
	return f
}

func loadData(start xml.StartElement) DataField {
	return DataField{Tag: attrInt(start, "id"), Name: attr(start, "name")}
}

func nextStartElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrInt(start xml.StartElement, name string) int {
	n, _ := strconv.Atoi(attr(start, name))
	return n
}

// schemaCache memoizes LoadSchemaFile by absolute path plus content hash, so
// a changed file on disk is reloaded even if the path was seen before.
// Concurrent loads of the same path are collapsed via singleflight so a
// burst of lookups for the same schema only parses it once.
type schemaCache struct {
	mu     sync.Mutex
	byKey  map[string]*Schema
	flight singleflight.Group
}

var defaultSchemaCache = &schemaCache{byKey: make(map[string]*Schema)}

// LoadSchemaFile loads and caches an SBE schema from disk, keyed by the
// file's absolute path and content hash.
func LoadSchemaFile(path string) (*Schema, error) {
	return defaultSchemaCache.load(path)
}

func (c *schemaCache) load(path string) (*Schema, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	contents, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(contents)
	key := abs + ":" + hex.EncodeToString(sum[:8])

	c.mu.Lock()
	if s, ok := c.byKey[key]; ok {
		c.mu.Unlock()
		metrics.Default.SchemaCacheHits.Inc()
		return s, nil
	}
	c.mu.Unlock()
	metrics.Default.SchemaCacheMisses.Inc()

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		s, err := LoadSchema(bytes.NewReader(contents))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.byKey[key] = s
		metrics.Default.SchemaCacheEntries.Set(int64(len(c.byKey)))
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Schema), nil
}
