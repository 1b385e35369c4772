package assetbatch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bmatcuk/doublestar/v4"
)

const globMetaChars = "*?[{"

func isRemote(pth string) bool {
	for _, scheme := range []string{"s3://", "http://", "https://"} {
		if strings.HasPrefix(pth, scheme) {
			return true
		}
	}
	return false
}

// expandPaths evaluates glob patterns relative to workingDir. Matches of a pattern are
// sorted, the overall order follows the order of the inputs and duplicates are dropped.
func expandPaths(workingDir string, paths []string, logger log.Logger) []string {
	var expanded []string
	seen := map[string]bool{}
	add := func(pth string) {
		if !seen[pth] {
			seen[pth] = true
			expanded = append(expanded, pth)
		}
	}

	for _, pth := range paths {
		if isRemote(pth) {
			add(pth)
			continue
		}

		pth = strings.TrimPrefix(pth, "file://")
		if !strings.ContainsAny(pth, globMetaChars) {
			if !filepath.IsAbs(pth) {
				pth = filepath.Join(workingDir, pth)
			}
			add(pth)
			continue
		}

		root, pattern := workingDir, pth
		if filepath.IsAbs(pth) {
			root, pattern = "/", strings.TrimPrefix(filepath.ToSlash(pth), "/")
		}

		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			logger.Warnf("Error in pattern '%s': %s", pth, err)
			continue
		}
		if len(matches) == 0 {
			logger.Warnf("No match for pattern: %s", pth)
			continue
		}

		sort.Strings(matches)
		for _, match := range matches {
			full := filepath.Join(root, filepath.FromSlash(match))
			if info, err := os.Stat(full); err != nil || info.IsDir() {
				continue
			}
			add(full)
		}
	}

	return expanded
}
