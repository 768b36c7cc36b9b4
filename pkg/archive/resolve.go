package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveIncludes 解析输入路径，展开通配符并确认每个路径存在
func ResolveIncludes(includes []string) ([]string, error) {
	var resolved []string

	for _, include := range includes {
		if strings.ContainsAny(include, "*?[]") {
			matches, err := filepath.Glob(include)
			if err != nil {
				return nil, fmt.Errorf("failed to glob %s: %w", include, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no matches found for pattern: %s", include)
			}
			resolved = append(resolved, matches...)
		} else {
			if _, err := os.Stat(include); err != nil {
				return nil, fmt.Errorf("path not found: %s", include)
			}
			resolved = append(resolved, include)
		}
	}

	return resolved, nil
}

// filterExcluded 去掉命中排除模式的文件
func (a *Archiver) filterExcluded(files []string) []string {
	if len(a.excludes) == 0 {
		return files
	}
	kept := make([]string, 0, len(files))
	for _, f := range files {
		if !a.isExcluded(f) {
			kept = append(kept, f)
		}
	}
	return kept
}

// isExcluded 检查路径是否命中任一排除模式
func (a *Archiver) isExcluded(path string) bool {
	normalized := filepath.ToSlash(path)
	for _, g := range a.excludes {
		if g.Match(normalized) {
			return true
		}
	}
	return false
}
