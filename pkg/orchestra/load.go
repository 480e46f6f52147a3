package orchestra

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// LoadRepository parses an Orchestra XML document (fixr: namespace; the
// namespace prefix itself is ignored, only local element names matter) into
// a Repository. Unrecognized elements are ignored. Orchestra's component
// and group definitions are expected as direct children of <components>
// and <groups>, each containing an ordered sequence of <fieldRef>,
// <componentRef>, and <groupRef> children; <message> elements contain the
// same sequence either directly or wrapped in a single <structure> child.
func LoadRepository(r io.Reader) (*Repository, error) {
	dec := xml.NewDecoder(r)
	repo := newRepository()

	// Find the root element.
	root, err := nextStart(dec)
	if err != nil {
		return nil, &ParseError{Reason: "could not find root element", Err: err}
	}
	if root.Name.Local != "repository" {
		return nil, &ParseError{Reason: fmt.Sprintf("unexpected root element %q, want repository", root.Name.Local)}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: "malformed XML", Err: err}
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "fields":
			if err := parseFields(dec, se, repo); err != nil {
				return nil, err
			}
		case "codeSets":
			if err := parseCodeSets(dec, se, repo); err != nil {
				return nil, err
			}
		case "components":
			if err := parseComponents(dec, se, repo); err != nil {
				return nil, err
			}
		case "groups":
			if err := parseGroups(dec, se, repo); err != nil {
				return nil, err
			}
		case "messages":
			if err := parseMessages(dec, se, repo); err != nil {
				return nil, err
			}
		default:
			if err := dec.Skip(); err != nil {
				return nil, &ParseError{Reason: "malformed XML", Err: err}
			}
		}
	}

	if len(repo.Messages) == 0 {
		return nil, ErrNoMessages
	}
	return repo, nil
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func attrInt(se xml.StartElement, name string) (int, bool) {
	s, ok := attr(se, name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFields(dec *xml.Decoder, parent xml.StartElement, repo *Repository) error {
	return forEachChild(dec, parent, func(se xml.StartElement) error {
		if se.Name.Local != "field" {
			return dec.Skip()
		}
		id, ok := attrInt(se, "id")
		if !ok {
			return &ParseError{Reason: "field missing id attribute"}
		}
		name, _ := attr(se, "name")
		typ, _ := attr(se, "type")
		f := &Field{ID: id, Name: name, Type: typ}
		repo.Fields[id] = f
		if name != "" {
			repo.FieldsByName[name] = f
		}
		return dec.Skip()
	})
}

func parseCodeSets(dec *xml.Decoder, parent xml.StartElement, repo *Repository) error {
	return forEachChild(dec, parent, func(se xml.StartElement) error {
		if se.Name.Local != "codeSet" {
			return dec.Skip()
		}
		id, _ := attrInt(se, "id")
		name, _ := attr(se, "name")
		typ, _ := attr(se, "type")
		cs := &CodeSet{ID: id, Name: name, Type: typ}
		err := forEachChild(dec, se, func(code xml.StartElement) error {
			if code.Name.Local != "code" {
				return dec.Skip()
			}
			cname, _ := attr(code, "name")
			cvalue, _ := attr(code, "value")
			cs.Codes = append(cs.Codes, Code{Name: cname, Value: cvalue})
			return dec.Skip()
		})
		if err != nil {
			return err
		}
		repo.CodeSets[id] = cs
		return nil
	})
}

func parseComponents(dec *xml.Decoder, parent xml.StartElement, repo *Repository) error {
	return forEachChild(dec, parent, func(se xml.StartElement) error {
		if se.Name.Local != "component" {
			return dec.Skip()
		}
		id, _ := attrInt(se, "id")
		name, _ := attr(se, "name")
		refs, err := collectRefs(dec, se)
		if err != nil {
			return err
		}
		repo.Components[id] = &Component{ID: id, Name: name, Refs: refs}
		return nil
	})
}

func parseGroups(dec *xml.Decoder, parent xml.StartElement, repo *Repository) error {
	return forEachChild(dec, parent, func(se xml.StartElement) error {
		if se.Name.Local != "group" {
			return dec.Skip()
		}
		id, _ := attrInt(se, "id")
		name, _ := attr(se, "name")
		numInGroupID, _ := attrInt(se, "numInGroupId")
		refs, err := collectRefs(dec, se)
		if err != nil {
			return err
		}
		repo.Groups[id] = &Group{ID: id, Name: name, NumInGroupFieldID: numInGroupID, Refs: refs}
		return nil
	})
}

func parseMessages(dec *xml.Decoder, parent xml.StartElement, repo *Repository) error {
	return forEachChild(dec, parent, func(se xml.StartElement) error {
		if se.Name.Local != "message" {
			return dec.Skip()
		}
		id, _ := attrInt(se, "id")
		name, _ := attr(se, "name")
		msgType, _ := attr(se, "msgType")
		refs, err := collectRefs(dec, se)
		if err != nil {
			return err
		}
		repo.Messages[id] = &Message{ID: id, Name: name, MsgType: msgType, Refs: refs}
		if name != "" {
			repo.MessagesByName[name] = repo.Messages[id]
		}
		return nil
	})
}

// collectRefs gathers the ordered fieldRef/componentRef/groupRef children
// of parent, transparently descending through a single <structure> wrapper
// if present.
func collectRefs(dec *xml.Decoder, parent xml.StartElement) ([]Ref, error) {
	var refs []Ref
	err := forEachChild(dec, parent, func(se xml.StartElement) error {
		switch se.Name.Local {
		case "structure":
			inner, err := collectRefs(dec, se)
			if err != nil {
				return err
			}
			refs = append(refs, inner...)
			return nil
		case "fieldRef":
			id, ok := attrInt(se, "id")
			if !ok {
				return dec.Skip()
			}
			pres, _ := attr(se, "presence")
			refs = append(refs, Ref{Kind: FieldRefKind, ID: id, Presence: parsePresence(pres)})
			return dec.Skip()
		case "componentRef":
			id, ok := attrInt(se, "id")
			if !ok {
				return dec.Skip()
			}
			pres, _ := attr(se, "presence")
			refs = append(refs, Ref{Kind: ComponentRefKind, ID: id, Presence: parsePresence(pres)})
			return dec.Skip()
		case "groupRef":
			id, ok := attrInt(se, "id")
			if !ok {
				return dec.Skip()
			}
			pres, _ := attr(se, "presence")
			refs = append(refs, Ref{Kind: GroupRefKind, ID: id, Presence: parsePresence(pres)})
			return dec.Skip()
		default:
			return dec.Skip()
		}
	})
	return refs, err
}

// forEachChild invokes fn for every immediate child StartElement of parent,
// then consumes tokens through parent's matching EndElement. fn must fully
// consume each child element it is given (typically via dec.Skip() or a
// nested forEachChild/collectRefs call).
func forEachChild(dec *xml.Decoder, parent xml.StartElement, fn func(xml.StartElement) error) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return &ParseError{Reason: fmt.Sprintf("malformed XML inside <%s>", parent.Name.Local), Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name == parent.Name {
				return nil
			}
		}
	}
}
