package normalize

import (
	"sort"
	"testing"
)

func TestSubjectEqual(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Data Structures", "data structures", true},
		{"  Data Structures  ", "Data   Structures", true},
		{"Data Structures", "Data Structure", false},
		{"", "", true},
	}
	for _, tc := range cases {
		if got := SubjectEqual(tc.a, tc.b); got != tc.want {
			t.Errorf("SubjectEqual(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestProgramCandidates(t *testing.T) {
	for _, spelling := range []string{"BTech", "B.Tech", "Btech", "B Tech"} {
		got := Program(spelling)
		if len(got) == 0 {
			t.Fatalf("Program(%q) returned no candidates", spelling)
		}
		if got[0] != spelling {
			t.Errorf("Program(%q) first candidate = %q, want the input", spelling, got[0])
		}
		want := map[string]bool{"BTech": true, "B.Tech": true, "Btech": true, "B Tech": true}
		for _, c := range got {
			if !want[c] {
				t.Errorf("Program(%q) unexpected candidate %q", spelling, c)
			}
		}
	}
}

// Any candidate spelling must expand to the same set, so queries built from
// different data-entry variants see the same rows.
func TestProgramCandidatesStable(t *testing.T) {
	base := Program("B.Tech")
	sort.Strings(base)
	for _, spelling := range []string{"BTech", "Btech"} {
		got := Program(spelling)
		sort.Strings(got)
		if len(got) != len(base) {
			t.Fatalf("Program(%q) = %v, want the same set as %v", spelling, got, base)
		}
		for i := range got {
			if got[i] != base[i] {
				t.Errorf("Program(%q) = %v, want %v", spelling, got, base)
				break
			}
		}
	}
}

func TestProgramUnknownPassthrough(t *testing.T) {
	got := Program("MBBS")
	if len(got) != 1 || got[0] != "MBBS" {
		t.Errorf("Program(MBBS) = %v, want just the input", got)
	}
}

func TestBranchCandidates(t *testing.T) {
	got := Branch("CSE(AIML)")
	want := map[string]bool{"CSE(AIML)": true, "CSE (AIML)": true}
	if len(got) != 2 {
		t.Fatalf("Branch(CSE(AIML)) = %v, want 2 candidates", got)
	}
	for _, c := range got {
		if !want[c] {
			t.Errorf("Branch(CSE(AIML)) unexpected candidate %q", c)
		}
	}

	spaced := Branch("CSE (AIML)")
	if len(spaced) != 2 {
		t.Fatalf("Branch(CSE (AIML)) = %v, want 2 candidates", spaced)
	}

	plain := Branch("ECE")
	if len(plain) != 1 || plain[0] != "ECE" {
		t.Errorf("Branch(ECE) = %v, want just the input", plain)
	}
}

func TestEmptyInputs(t *testing.T) {
	if got := Program(""); got != nil {
		t.Errorf("Program(\"\") = %v, want nil", got)
	}
	if got := Branch("  "); got != nil {
		t.Errorf("Branch(blank) = %v, want nil", got)
	}
}
