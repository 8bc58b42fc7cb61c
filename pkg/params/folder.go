// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"math"
	"sort"
	"strings"

	"github.com/checkmk-mcp/core/pkg/checkmk"
)

// FolderDistance computes how far rule folder F is from host folder H in the
// folder hierarchy: 0 when equal, k when F is an ancestor of H at k levels
// up, and +Inf when F is not on H's path to the root. The root folder "/" is
// the universal ancestor.
func FolderDistance(hostFolder, ruleFolder string) float64 {
	h := normalizeFolder(hostFolder)
	f := normalizeFolder(ruleFolder)

	if h == f {
		return 0
	}
	if f == "/" {
		return float64(folderDepth(h))
	}
	if !strings.HasPrefix(h, f+"/") {
		return math.Inf(1)
	}
	return float64(folderDepth(h) - folderDepth(f))
}

// SortRulesByFolderPrecedence orders rules by ascending folder distance from
// the host's folder, dropping rules outside the host's ancestry. The sort is
// stable: equal distances preserve upstream order.
func SortRulesByFolderPrecedence(rules []checkmk.Rule, hostFolder string) []checkmk.Rule {
	type scored struct {
		rule     checkmk.Rule
		distance float64
	}

	matching := make([]scored, 0, len(rules))
	for _, rule := range rules {
		d := FolderDistance(hostFolder, rule.Folder)
		if math.IsInf(d, 1) {
			continue
		}
		matching = append(matching, scored{rule: rule, distance: d})
	}

	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].distance < matching[j].distance
	})

	out := make([]checkmk.Rule, len(matching))
	for i, s := range matching {
		out[i] = s.rule
	}
	return out
}

// normalizeFolder trims a trailing slash except at root.
func normalizeFolder(folder string) string {
	if folder == "" {
		return "/"
	}
	if folder != "/" && strings.HasSuffix(folder, "/") {
		folder = strings.TrimRight(folder, "/")
		if folder == "" {
			return "/"
		}
	}
	if !strings.HasPrefix(folder, "/") {
		folder = "/" + folder
	}
	return folder
}

func folderDepth(folder string) int {
	if folder == "/" {
		return 0
	}
	return strings.Count(folder, "/")
}
