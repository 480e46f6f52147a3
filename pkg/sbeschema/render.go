package sbeschema

import (
	"fmt"
	"strings"
)

const sbeNamespace = "http://fixprotocol.io/2016/sbe"

// renderSchema builds the textual SBE XML document for a compiled schema.
// It is hand-built rather than produced via encoding/xml.Marshal so the
// emitted attribute order and composite preamble match what LoadSchema
// expects to walk, and so nullValue is deliberately omitted (both the
// encoder and decoder re-derive it from FixedField.NullValueBits).
func renderSchema(schemaID, version int, messages []*MessageLayout) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "<sbe:messageSchema xmlns:sbe=%q package=\"fixdescriptor\" id=\"%d\" version=\"%d\" byteOrder=\"littleEndian\">\n",
		sbeNamespace, schemaID, version)
	b.WriteString("  <types>\n")
	b.WriteString("    <composite name=\"messageHeader\">\n")
	b.WriteString("      <type name=\"blockLength\" primitiveType=\"uint16\"/>\n")
	b.WriteString("      <type name=\"templateId\" primitiveType=\"uint16\"/>\n")
	b.WriteString("      <type name=\"schemaId\" primitiveType=\"uint16\"/>\n")
	b.WriteString("      <type name=\"version\" primitiveType=\"uint16\"/>\n")
	b.WriteString("    </composite>\n")
	b.WriteString("    <composite name=\"groupSizeEncoding\">\n")
	b.WriteString("      <type name=\"blockLength\" primitiveType=\"uint16\"/>\n")
	b.WriteString("      <type name=\"numInGroup\" primitiveType=\"uint16\"/>\n")
	b.WriteString("    </composite>\n")
	b.WriteString("  </types>\n")

	for _, msg := range messages {
		fmt.Fprintf(&b, "  <sbe:message name=%q id=\"%d\" blockLength=\"%d\">\n",
			msg.Name, msg.TemplateID, msg.BlockLength)
		renderFields(&b, "    ", msg.Fields)
		renderData(&b, "    ", msg.DataFields)
		renderGroups(&b, "    ", msg.Groups)
		b.WriteString("  </sbe:message>\n")
	}

	b.WriteString("</sbe:messageSchema>\n")
	return []byte(b.String())
}

func renderFields(b *strings.Builder, indent string, fields []FixedField) {
	for _, f := range fields {
		fmt.Fprintf(b, "%s<field name=%q id=\"%d\" type=%q presence=%q",
			indent, f.Name, f.Tag, string(f.Kind), presenceAttr(f.Presence))
		if f.Scale != 0 {
			fmt.Fprintf(b, " scale=\"%d\"", f.Scale)
		}
		if f.IsTimestamp {
			b.WriteString(" semantic=\"timestamp\"")
		}
		if f.IsBoolean {
			b.WriteString(" semantic=\"boolean\"")
		}
		b.WriteString("/>\n")
	}
}

func renderData(b *strings.Builder, indent string, fields []DataField) {
	for _, d := range fields {
		fmt.Fprintf(b, "%s<data name=%q id=\"%d\" type=\"varStringEncoding\"/>\n", indent, d.Name, d.Tag)
	}
}

func renderGroups(b *strings.Builder, indent string, groups []GroupLayout) {
	for _, g := range groups {
		fmt.Fprintf(b, "%s<group name=%q id=\"%d\" dimensionType=\"groupSizeEncoding\" blockLength=\"%d\">\n",
			indent, g.Name, g.CountTag, g.BlockLength)
		renderFields(b, indent+"  ", g.Fields)
		renderData(b, indent+"  ", g.DataFields)
		renderGroups(b, indent+"  ", g.NestedGroups)
		fmt.Fprintf(b, "%s</group>\n", indent)
	}
}

func presenceAttr(p Presence) string {
	if p == PresenceOptional {
		return "optional"
	}
	return "required"
}
