// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation scans drafted prose for [CITE: reason] placeholders and
// derives the numbered reference list they imply. Every function here is
// pure: the same blocks always produce the same list.
package citation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-drafter/pkg/types"
)

// Placeholder is the rendering of an empty reference list.
const Placeholder = "No citations found in the text."

// markerRe matches a citation placeholder. The reason runs up to the first
// closing bracket, so reasons cannot themselves contain "]".
var markerRe = regexp.MustCompile(`\[CITE:\s*([^\]]+)\]`)

// Marker formats a citation placeholder for reason.
func Marker(reason string) string {
	return "[CITE: " + reason + "]"
}

// ExtractReasons returns the trimmed reason of every marker in text, left
// to right. Duplicates are kept. A marker whose reason is only whitespace
// yields the empty reason.
func ExtractReasons(text string) []string {
	if text == "" {
		return nil
	}
	matches := markerRe.FindAllStringSubmatch(text, -1)
	var reasons []string
	for _, m := range matches {
		reasons = append(reasons, strings.TrimSpace(m[1]))
	}
	return reasons
}

// DeriveReferenceList scans blocks in collection order and numbers each
// distinct reason by first appearance. Later duplicates are dropped without
// shifting indices.
func DeriveReferenceList(blocks []types.TextBlock) []types.Reference {
	seen := make(map[string]bool)
	var refs []types.Reference
	for _, b := range blocks {
		if !b.HasBody() {
			continue
		}
		for _, reason := range ExtractReasons(b.Body) {
			if seen[reason] {
				continue
			}
			seen[reason] = true
			refs = append(refs, types.Reference{Index: len(refs) + 1, Reason: reason})
		}
	}
	return refs
}

// HasAnyMarkers reports whether any block cites anything.
func HasAnyMarkers(blocks []types.TextBlock) bool {
	return len(DeriveReferenceList(blocks)) > 0
}

// RenderReferenceList formats refs as "[n] reason" lines. An empty list
// renders as Placeholder.
func RenderReferenceList(refs []types.Reference) string {
	if len(refs) == 0 {
		return Placeholder
	}
	lines := make([]string, len(refs))
	for i, r := range refs {
		lines[i] = "[" + strconv.Itoa(r.Index) + "] " + r.Reason
	}
	return strings.Join(lines, "\n")
}

// ReplaceMarkers rewrites every marker in text with replace(ref), where ref
// is the entry of refs matching the marker's reason. Markers with no entry
// in refs are left as they are.
func ReplaceMarkers(text string, refs []types.Reference, replace func(types.Reference) string) string {
	if len(refs) == 0 {
		return text
	}
	byReason := make(map[string]types.Reference, len(refs))
	for _, r := range refs {
		byReason[r.Reason] = r
	}
	return markerRe.ReplaceAllStringFunc(text, func(match string) string {
		m := markerRe.FindStringSubmatch(match)
		ref, ok := byReason[strings.TrimSpace(m[1])]
		if !ok {
			return match
		}
		return replace(ref)
	})
}
