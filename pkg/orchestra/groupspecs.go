package orchestra

import "github.com/NethermindEth/fix-descriptor/pkg/fix"

// GroupSpecs walks a message's refs -- inlining componentRefs exactly as
// the SBE compiler does -- and returns a map of fix.GroupSpec keyed by
// count tag, suitable for fix.Nest. Unlike the SBE compiler's own field
// ordering (which separates fixed-size fields from data fields), the
// FieldTags here preserve Orchestra declaration order, because that order
// is what the raw FIX wire stream actually follows. Nested groups
// contribute their own entry to the same flat map, keyed by their own
// count tag, and appear within their parent's FieldTags as that count tag
// (fix.Nest recognizes it there and recurses).
func (r *Repository) GroupSpecs(msg *Message) map[int]fix.GroupSpec {
	out := make(map[int]fix.GroupSpec)
	flattenGroupTags(msg.Refs, r, out)
	return out
}

func flattenGroupTags(refs []Ref, r *Repository, out map[int]fix.GroupSpec) []int {
	var tags []int
	for _, ref := range refs {
		switch ref.Kind {
		case FieldRefKind:
			tags = append(tags, ref.ID)
		case ComponentRefKind:
			if comp, ok := r.Components[ref.ID]; ok {
				tags = append(tags, flattenGroupTags(comp.Refs, r, out)...)
			}
		case GroupRefKind:
			g, ok := r.Groups[ref.ID]
			if !ok {
				continue
			}
			tags = append(tags, g.NumInGroupFieldID)
			fieldTags := flattenGroupTags(g.Refs, r, out)
			out[g.NumInGroupFieldID] = fix.GroupSpec{
				CountTag:  g.NumInGroupFieldID,
				FieldTags: fieldTags,
			}
		}
	}
	return tags
}
