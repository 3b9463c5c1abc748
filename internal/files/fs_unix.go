//go:build !windows

package files

import "os"

func replaceFile(from, to string) error {
	return os.Rename(from, to)
}

func isReparsePoint(string) (bool, error) {
	return false, nil
}
