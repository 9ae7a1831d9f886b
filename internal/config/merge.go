package config

import (
	"sort"
	"strings"
)

// Merge folds source over target and returns the result; neither input is
// modified.
//
//   - a Null source leaves target as is
//   - a mapping source merges key by key; keys only in target survive
//   - any other source (scalar or sequence) replaces target wholesale
func Merge(target, source Node) Node {
	switch source.kind {
	case KindNull:
		return target.Clone()
	case KindMapping:
		out := target.Clone()
		if out.kind != KindMapping {
			out = Mapping(nil)
		}
		for k, sv := range source.fields {
			merged := Merge(out.fields[k], sv)
			if merged.kind == KindNull {
				continue
			}
			out.fields[k] = merged
		}
		return out
	default:
		return source.Clone()
	}
}

// diffKeys lists dotted key paths added and changed between before and after.
func diffKeys(before, after Node) (added, updated []string) {
	walkDiff(before, after, nil, &added, &updated)
	sort.Strings(added)
	sort.Strings(updated)
	return added, updated
}

func walkDiff(before, after Node, path []string, added, updated *[]string) {
	if after.kind != KindMapping {
		if !before.Equal(after) && len(path) > 0 {
			*updated = append(*updated, strings.Join(path, "."))
		}
		return
	}
	for _, k := range after.Keys() {
		av := after.fields[k]
		p := append(append([]string(nil), path...), k)
		bv, ok := before.Get(k)
		switch {
		case !ok:
			*added = append(*added, strings.Join(p, "."))
		case bv.Equal(av):
		case bv.kind == KindMapping && av.kind == KindMapping:
			walkDiff(bv, av, p, added, updated)
		default:
			*updated = append(*updated, strings.Join(p, "."))
		}
	}
}
