// Package normalize holds the string heuristics that tolerate inconsistent
// data entry for program and branch names. Lookups fan out over the candidate
// spellings so "B.Tech", "BTech" and "Btech" rows all resolve.
package normalize

import "strings"

// Subject canonicalizes a subject name for comparison: trimmed, single
// internal spaces, lower-cased.
func Subject(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// SubjectEqual reports case/whitespace-insensitive subject equality.
func SubjectEqual(a, b string) bool {
	return Subject(a) == Subject(b)
}

// Program returns the candidate spellings for a program name, the input
// first. Normalizing any candidate yields the same set.
func Program(p string) []string {
	p = strings.TrimSpace(p)
	if p == "" {
		return nil
	}
	compact := strings.ReplaceAll(strings.ReplaceAll(p, ".", ""), " ", "")
	switch strings.ToLower(compact) {
	case "btech":
		return dedupe(p, "BTech", "B.Tech", "Btech", "B Tech")
	case "mtech":
		return dedupe(p, "MTech", "M.Tech", "Mtech", "M Tech")
	case "bsc":
		return dedupe(p, "BSc", "B.Sc", "Bsc", "B Sc")
	case "msc":
		return dedupe(p, "MSc", "M.Sc", "Msc", "M Sc")
	case "bca":
		return dedupe(p, "BCA", "Bca")
	case "mca":
		return dedupe(p, "MCA", "Mca")
	case "mba":
		return dedupe(p, "MBA", "Mba")
	default:
		return dedupe(p, compact)
	}
}

// Branch returns the candidate spellings for a branch name. The variants
// differ only in the spacing before a parenthetical, e.g. "CSE(AIML)" and
// "CSE (AIML)".
func Branch(b string) []string {
	b = strings.TrimSpace(b)
	if b == "" {
		return nil
	}
	idx := strings.Index(b, "(")
	if idx < 0 {
		return []string{b}
	}
	head := strings.TrimSpace(b[:idx])
	tail := b[idx:]
	return dedupe(b, head+tail, head+" "+tail)
}

func dedupe(vals ...string) []string {
	seen := make(map[string]bool, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
