// Package rules holds the fixed tables that steer delivery extraction and
// reconciliation: the ignore-id set, the noise markers, the date marker,
// display-name overrides and the category exclusion keywords.
//
// The tables are declared once in Default. Sites with a different supplier
// layout can swap them by loading a CUE or YAML file; fields absent from the
// file keep their default values.
//
// Example CUE file:
//
//	rules: {
//		line_tolerance: 8
//		date_marker:    "Leverdatum"
//		noise_markers: ["Industrieweg", "Apeldoorn", "Debiteurnummer", "Totaal"]
//		ignore_ids: ["3812", "104233", "55001234"]
//		renames: "1160": "Keukendoek"
//		exclude_keywords: ["vloermop"]
//	}
package rules
