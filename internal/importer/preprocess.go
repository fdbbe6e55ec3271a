package importer

import (
	"strings"
)

// noiseMarkers are banner lines some banks put above or inside the table.
var noiseMarkers = []string{
	"movimientos de cuenta",
	"saldo inicial",
}

// Preprocess removes lines that cannot be transaction rows: blank lines, lines
// whose fields are all empty, dash separators and bank banners such as
// "SALDO INICIAL". It never fails.
func Preprocess(text string, delimiter rune) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if isNoise(line, delimiter) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isNoise(line string, delimiter rune) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if allFieldsBlank(trimmed, delimiter) {
		return true
	}
	if strings.Trim(trimmed, "- "+string(delimiter)) == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, m := range noiseMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func allFieldsBlank(line string, delimiter rune) bool {
	for _, f := range strings.Split(line, string(delimiter)) {
		if strings.TrimSpace(strings.Trim(strings.TrimSpace(f), `"`)) != "" {
			return false
		}
	}
	return true
}
