package declarative

import (
	"os"
	"path/filepath"
	"strings"
)

// isPathUnderRoot reports whether candidate, after resolving symlinks, stays
// inside root.
func isPathUnderRoot(root string, candidate string) bool {
	rootResolved, err := resolvePathWithSymlinks(root)
	if err != nil {
		return false
	}
	candidateResolved, err := resolvePathWithSymlinks(candidate)
	if err != nil {
		return false
	}
	return isPathUnderRootLexical(rootResolved, candidateResolved)
}

func isPathUnderRootLexical(root string, candidate string) bool {
	relPath, err := filepath.Rel(filepath.Clean(root), filepath.Clean(candidate))
	if err != nil {
		return false
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// resolvePathWithSymlinks resolves every symlink component of path. All
// components must exist.
func resolvePathWithSymlinks(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if cleaned == "." {
		return cleaned, nil
	}

	volume := filepath.VolumeName(cleaned)
	rest := strings.TrimPrefix(cleaned, volume)
	sep := string(filepath.Separator)

	current := ""
	switch {
	case strings.HasPrefix(rest, sep):
		current = volume + sep
		rest = strings.TrimPrefix(rest, sep)
	case volume != "":
		current = volume
	}

	parts := strings.FieldsFunc(rest, func(r rune) bool {
		return r == rune(filepath.Separator)
	})
	if len(parts) == 0 {
		if current == "" {
			return cleaned, nil
		}
		return filepath.Clean(current), nil
	}

	for _, part := range parts {
		next := filepath.Join(current, part)

		info, err := os.Lstat(next)
		if err != nil {
			return "", err
		}

		if info.Mode()&os.ModeSymlink != 0 {
			resolvedLink, err := filepath.EvalSymlinks(next)
			if err != nil {
				return "", err
			}
			current = resolvedLink
			continue
		}

		current = next
	}

	if current == "" {
		return cleaned, nil
	}
	return filepath.Clean(current), nil
}
