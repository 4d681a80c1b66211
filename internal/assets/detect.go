package assets

import "strings"

// DataType is a data_file type tag understood by the FiveM loader.
type DataType string

const (
	DataTypeUnknown          DataType = ""
	DataTypeShopPedApparel   DataType = "SHOP_PED_APPAREL_META_FILE"
	DataTypePedComponents    DataType = "PED_COMPONENTS_FILE"
	DataTypePedOverlay       DataType = "PED_OVERLAY_FILE"
	DataTypeContentUnlocking DataType = "CONTENT_UNLOCKING_META_FILE"
)

// DefaultClassifyMaxBytes bounds how much of a .meta file is read.
const DefaultClassifyMaxBytes = 800_000

const classifiableExt = ".meta"

type detectRule struct {
	dataType DataType
	match    func(text string) bool
}

func anyOf(keywords ...string) func(string) bool {
	return func(text string) bool {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}
}

// detectRules is evaluated top to bottom; order decides ambiguous files.
var detectRules = []detectRule{
	{DataTypeShopPedApparel, anyOf("shoppedapparel", "shop_ped_apparel", "shop ped apparel")},
	{DataTypePedComponents, anyOf("pedcomponents", "ped_component", "componentinfo")},
	{DataTypePedOverlay, anyOf("pedoverlays", "ped_overlays", "tattoo")},
	{DataTypeContentUnlocking, func(text string) bool {
		return (strings.Contains(text, "dlcname") && strings.Contains(text, "content")) ||
			strings.Contains(text, "contentunlocks")
	}},
}

// DetectText applies the keyword rules to already lower-cased text.
func DetectText(lowered string) DataType {
	if lowered == "" {
		return DataTypeUnknown
	}
	for _, rule := range detectRules {
		if rule.match(lowered) {
			return rule.dataType
		}
	}
	return DataTypeUnknown
}

// DetectDataType reads at most maxBytes of path and returns its data type.
// A non-positive maxBytes falls back to DefaultClassifyMaxBytes.
func DetectDataType(path string, maxBytes int) DataType {
	return DetectText(ReadTextLoose(path, maxBytes))
}

// Classifiable reports whether files with ext are content-sniffed. Only .meta
// files are text; .ymt files are binary resource containers.
func Classifiable(ext string) bool {
	return strings.ToLower(ext) == classifiableExt
}
