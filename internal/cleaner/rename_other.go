//go:build !linux

package cleaner

func renameNoReplace(src, dst string) error {
	return renameChecked(src, dst)
}
