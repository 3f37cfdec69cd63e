package presenter

import "github.com/dshills/popcomplete/internal/completion"

var kindIcons = map[completion.Kind]string{
	completion.KindText:          "abc",
	completion.KindMethod:        "m",
	completion.KindFunction:      "f",
	completion.KindConstructor:   "new",
	completion.KindField:         "fld",
	completion.KindVariable:      "var",
	completion.KindClass:         "cls",
	completion.KindInterface:     "ifc",
	completion.KindModule:        "mod",
	completion.KindProperty:      "prp",
	completion.KindKeyword:       "kw",
	completion.KindSnippet:       "snp",
	completion.KindConstant:      "cst",
	completion.KindStruct:        "st",
	completion.KindEnum:          "enm",
	completion.KindEnumMember:    "enm",
	completion.KindTypeParameter: "T",
}

// KindIcon returns a short tag for the item's kind.
func KindIcon(k completion.Kind) string {
	if s, ok := kindIcons[k]; ok {
		return s
	}
	return "·"
}
