package sbeschema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NethermindEth/fix-descriptor/pkg/log"
	"github.com/NethermindEth/fix-descriptor/pkg/orchestra"
)

var compilerLog = log.Module("sbeschema.compiler")

// CompileOptions configures Orchestra-to-SBE compilation.
type CompileOptions struct {
	// SchemaID and Version are written into every message header the
	// resulting schema can produce. Both default to 1 when zero.
	SchemaID int
	Version  int

	// Messages, if non-empty, restricts compilation to these message
	// names. An unresolvable name is a SemanticError.
	Messages []string

	// ScalingOverrides overrides the default decimal scale (as a power of
	// ten exponent) for a FIX datatype name, e.g. {"Price": 6}. Types not
	// present use the default (Qty/Price/PriceOffset/Amt: 4,
	// Percentage: 8).
	ScalingOverrides map[string]int
}

// CompileToSBE lowers an Orchestra repository into an SBE XML schema
// document, assigning wire offsets, choosing an encoding primitive per FIX
// datatype, and inlining components and expanding groups eagerly.
func CompileToSBE(repo *orchestra.Repository, opts CompileOptions) ([]byte, error) {
	schemaID := opts.SchemaID
	if schemaID == 0 {
		schemaID = 1
	}
	version := opts.Version
	if version == 0 {
		version = 1
	}

	targets, err := selectMessages(repo, opts.Messages)
	if err != nil {
		return nil, err
	}

	codesets := codeSetsByName(repo)

	layouts := make([]*MessageLayout, 0, len(targets))
	for _, msg := range targets {
		layout, err := compileMessage(msg, repo, codesets, opts)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, layout)
	}

	return renderSchema(schemaID, version, layouts), nil
}

func selectMessages(repo *orchestra.Repository, names []string) ([]*orchestra.Message, error) {
	if len(names) == 0 {
		out := make([]*orchestra.Message, 0, len(repo.Messages))
		for _, m := range repo.Messages {
			out = append(out, m)
		}
		if len(out) == 0 {
			return nil, ErrNoMessages
		}
		// Messages live in a map; sort by template id so the emitted
		// schema document is identical across runs.
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	}
	out := make([]*orchestra.Message, 0, len(names))
	for _, name := range names {
		m, ok := repo.MessagesByName[name]
		if !ok {
			return nil, &SemanticError{MessageName: name, Reason: "message not found in repository"}
		}
		out = append(out, m)
	}
	return out, nil
}

func codeSetsByName(repo *orchestra.Repository) map[string]*orchestra.CodeSet {
	out := make(map[string]*orchestra.CodeSet, len(repo.CodeSets))
	for _, cs := range repo.CodeSets {
		out[cs.Name] = cs
	}
	return out
}

// resolvedField is a leaf fieldRef after component inlining, still carrying
// the presence declared at its point of reference.
type resolvedField struct {
	FieldID  int
	Presence orchestra.Presence
}

// resolvedGroup is a leaf groupRef after component inlining.
type resolvedGroup struct {
	Group    *orchestra.Group
	Presence orchestra.Presence
}

// flattenRefs walks refs in document order, inlining componentRefs
// recursively and collecting fieldRefs and groupRefs. An unresolvable
// fieldRef id is dropped and logged, not fatal, so a schema revision that
// references not-yet-defined fields still compiles. An unresolvable
// componentRef or groupRef id is treated the same way.
func flattenRefs(refs []orchestra.Ref, repo *orchestra.Repository) ([]resolvedField, []resolvedGroup) {
	var fields []resolvedField
	var groups []resolvedGroup

	for _, ref := range refs {
		switch ref.Kind {
		case orchestra.FieldRefKind:
			if _, ok := repo.Fields[ref.ID]; !ok {
				compilerLog.Warn("dropping unresolved fieldRef", "id", ref.ID)
				continue
			}
			fields = append(fields, resolvedField{FieldID: ref.ID, Presence: ref.Presence})
		case orchestra.ComponentRefKind:
			comp, ok := repo.Components[ref.ID]
			if !ok {
				compilerLog.Warn("dropping unresolved componentRef", "id", ref.ID)
				continue
			}
			innerFields, innerGroups := flattenRefs(comp.Refs, repo)
			fields = append(fields, innerFields...)
			groups = append(groups, innerGroups...)
		case orchestra.GroupRefKind:
			g, ok := repo.Groups[ref.ID]
			if !ok {
				compilerLog.Warn("dropping unresolved groupRef", "id", ref.ID)
				continue
			}
			groups = append(groups, resolvedGroup{Group: g, Presence: ref.Presence})
		}
	}
	return fields, groups
}

func compileMessage(msg *orchestra.Message, repo *orchestra.Repository, codesets map[string]*orchestra.CodeSet, opts CompileOptions) (*MessageLayout, error) {
	fields, groups := flattenRefs(msg.Refs, repo)
	if len(fields) == 0 && len(groups) == 0 {
		return nil, &SemanticError{MessageName: msg.Name, Reason: "no valid fields found"}
	}

	fixedFields, dataFields, err := splitFixedData(fields, repo, codesets, opts)
	if err != nil {
		return nil, fmt.Errorf("message %q: %w", msg.Name, err)
	}

	assignOffsets(fixedFields)
	blockLength := blockLengthOf(fixedFields)

	groupLayouts := make([]GroupLayout, 0, len(groups))
	for _, rg := range groups {
		gl, err := compileGroup(rg.Group, repo, codesets, opts)
		if err != nil {
			return nil, fmt.Errorf("message %q: %w", msg.Name, err)
		}
		groupLayouts = append(groupLayouts, gl)
	}

	return &MessageLayout{
		TemplateID:  msg.ID,
		Name:        msg.Name,
		BlockLength: blockLength,
		Fields:      fixedFields,
		DataFields:  dataFields,
		Groups:      groupLayouts,
	}, nil
}

func compileGroup(g *orchestra.Group, repo *orchestra.Repository, codesets map[string]*orchestra.CodeSet, opts CompileOptions) (GroupLayout, error) {
	fields, groups := flattenRefs(g.Refs, repo)
	fixedFields, dataFields, err := splitFixedData(fields, repo, codesets, opts)
	if err != nil {
		return GroupLayout{}, fmt.Errorf("group %q: %w", g.Name, err)
	}
	assignOffsets(fixedFields)
	blockLength := blockLengthOf(fixedFields)

	nested := make([]GroupLayout, 0, len(groups))
	for _, rg := range groups {
		ngl, err := compileGroup(rg.Group, repo, codesets, opts)
		if err != nil {
			return GroupLayout{}, err
		}
		nested = append(nested, ngl)
	}

	return GroupLayout{
		CountTag:     g.NumInGroupFieldID,
		Name:         g.Name,
		BlockLength:  blockLength,
		Fields:       fixedFields,
		DataFields:   dataFields,
		NestedGroups: nested,
	}, nil
}

func assignOffsets(fields []FixedField) {
	offset := 0
	for i := range fields {
		fields[i].Offset = offset
		offset += fields[i].Kind.Size()
	}
}

func blockLengthOf(fields []FixedField) int {
	total := 0
	for _, f := range fields {
		total += f.Kind.Size()
	}
	return total
}

func splitFixedData(fields []resolvedField, repo *orchestra.Repository, codesets map[string]*orchestra.CodeSet, opts CompileOptions) ([]FixedField, []DataField, error) {
	var fixed []FixedField
	var data []DataField
	for _, rf := range fields {
		field := repo.Fields[rf.FieldID]
		kind, scale, isTimestamp, isBoolean, isData, err := mapType(field.Type, codesets, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("field %d (%s): %w", field.ID, field.Type, err)
		}
		if isData {
			data = append(data, DataField{Tag: field.ID, Name: field.Name})
			continue
		}
		fixed = append(fixed, FixedField{
			Tag:         field.ID,
			Name:        field.Name,
			Kind:        kind,
			Presence:    presenceOf(rf.Presence),
			Scale:       scale,
			IsTimestamp: isTimestamp,
			IsBoolean:   isBoolean,
		})
	}
	return fixed, data, nil
}

func presenceOf(p orchestra.Presence) Presence {
	if p == orchestra.PresenceOptional {
		return PresenceOptional
	}
	return PresenceRequired
}

// mapType chooses the SBE encoding for one FIX datatype or CodeSet name.
func mapType(fixType string, codesets map[string]*orchestra.CodeSet, opts CompileOptions) (kind Kind, scale int, isTimestamp, isBoolean, isData bool, err error) {
	if _, ok := codesets[fixType]; ok {
		return "", 0, false, false, true, nil
	}

	switch fixType {
	case "String", "MultipleValueString", "MultipleStringValue", "MultipleCharValue",
		"Country", "Currency", "Exchange", "LocalMktDate", "MonthYear",
		"UTCDateOnly", "UTCTimeOnly":
		return "", 0, false, false, true, nil
	case "char":
		return KindChar, 0, false, false, false, nil
	case "int", "Length", "SeqNum", "TagNum", "DayOfMonth":
		return KindUint32, 0, false, false, false, nil
	case "NumInGroup":
		return KindUint16, 0, false, false, false, nil
	case "Qty", "Price", "PriceOffset", "Amt":
		return KindInt64, scaleFor(fixType, 4, opts), false, false, false, nil
	case "Percentage":
		return KindInt64, scaleFor(fixType, 8, opts), false, false, false, nil
	case "float":
		return KindDouble, 0, false, false, false, nil
	case "UTCTimestamp", "TZTimestamp":
		return KindUint64, 0, true, false, false, nil
	case "Boolean":
		return KindUint8, 0, false, true, false, nil
	default:
		if strings.HasSuffix(fixType, "CodeSet") {
			return "", 0, false, false, true, nil
		}
		return "", 0, false, false, false, ErrUnknownType
	}
}

func scaleFor(fixType string, def int, opts CompileOptions) int {
	if opts.ScalingOverrides == nil {
		return def
	}
	if s, ok := opts.ScalingOverrides[fixType]; ok {
		return s
	}
	return def
}
