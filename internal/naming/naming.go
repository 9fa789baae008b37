// Package naming derives canonical file names from the numbered variants a
// faulty copy leaves behind ("report_2.txt" next to "report.txt").
package naming

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// duplicateSuffix matches "_<digits>" directly before the final
	// extension. The extension itself may not contain a dot.
	duplicateSuffix = regexp.MustCompile(`_\d+(\.[^.]+)$`)

	// numberedEnv matches a bare numbered dotenv file such as "_7.env".
	numberedEnv = regexp.MustCompile(`(?i)^_\d+\.env$`)
)

// EnvFile is the canonical name every numbered dotenv variant maps to.
const EnvFile = ".env"

// BaseName returns name with its duplication suffix removed. Names without
// a suffix are returned unchanged.
func BaseName(name string) string {
	if numberedEnv.MatchString(name) {
		return EnvFile
	}
	return duplicateSuffix.ReplaceAllString(name, "$1")
}

// HasSuffix reports whether name carries a duplication suffix.
func HasSuffix(name string) bool {
	return BaseName(name) != name
}

// Ext returns the lowercased extension of name. Dotfiles such as ".env"
// report their whole name as the extension, matching filepath.Ext.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
