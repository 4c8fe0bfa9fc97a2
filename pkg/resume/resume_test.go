package resume

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractHeaderFirstFive(t *testing.T) {
	doc := NewDocument("Jane Doe", "555-1234", "jane@x.com", "Springfield", "linkedin.com/in/jane", "Built things", "More things")
	got := Default().ExtractHeader(doc)
	want := []string{"Jane Doe", "555-1234", "jane@x.com", "Springfield", "linkedin.com/in/jane"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractHeader() = %q, want %q", got, want)
	}
}

func TestExtractHeaderStopsAtKeyword(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		paras []string
		want  []string
	}{
		{
			name:  "keyword after limit",
			limit: 5,
			paras: []string{"A", "B", "C", "D", "E", "F", "Education", "G"},
			want:  []string{"A", "B", "C", "D", "E"},
		},
		{
			name:  "keyword at index 6 inside a wider limit",
			limit: 10,
			paras: []string{"A", "B", "C", "D", "E", "F", "EDUCATION", "Skills in Go", "H"},
			want:  []string{"A", "B", "C", "D", "E", "F"},
		},
		{
			name:  "keyword inside first positions",
			limit: 5,
			paras: []string{"Jane", "Work Experience", "Acme"},
			want:  []string{"Jane"},
		},
		{
			name:  "short heading containing keyword",
			limit: 5,
			paras: []string{"Jane", "Technical skills: Go", "Acme"},
			want:  []string{"Jane"},
		},
		{
			name:  "keyword inside a contact line",
			limit: 5,
			paras: []string{"Jane Doe", "Senior Engineer, 10 years experience", "555-1234", "jane@x.com", "Springfield", "Experience", "Acme"},
			want:  []string{"Jane Doe", "Senior Engineer, 10 years experience", "555-1234", "jane@x.com", "Springfield"},
		},
		{
			name:  "indented heading",
			limit: 5,
			paras: []string{"Jane", "   Education and training programs", "MIT"},
			want:  []string{"Jane"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Segmenter{
				Detector: NewPositionalDetector(tt.limit, DefaultStopKeywords...),
				Titles:   NewLabels(DefaultSectionTitles...),
			}
			got := s.ExtractHeader(NewDocument(tt.paras...))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractHeaderEdgeCases(t *testing.T) {
	s := Default()

	if got := s.ExtractHeader(NewDocument("", "  ", "\t")); len(got) != 0 {
		t.Errorf("blank document header = %q, want empty", got)
	}
	if got := s.ExtractHeader(nil); len(got) != 0 {
		t.Errorf("nil document header = %q, want empty", got)
	}

	// A short document with no keyword is all header.
	got := s.ExtractHeader(NewDocument("Jane", "", "Acme Corp"))
	want := []string{"Jane", "Acme Corp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("short document header = %q, want %q", got, want)
	}
	if body := s.ExtractContent(NewDocument("Jane", "", "Acme Corp")); body != "" {
		t.Errorf("short document body = %q, want empty", body)
	}
}

func TestExtractContent(t *testing.T) {
	doc := NewDocument("  Jane Doe ", "555-1234", "", "x", "y", " Summary ", "", "Led migrations  ")
	got := Default().ExtractContent(doc)
	want := "Summary\nLed migrations"
	if got != want {
		t.Errorf("ExtractContent() = %q, want %q", got, want)
	}
}

func TestNoDuplicationAcrossBoundary(t *testing.T) {
	docs := [][]string{
		{"Jane Doe", "", "", "555-1234", "jane@x.com", "Acme", "Globex", "Initech"},
		{"", "", "", "", "", "Experience", "Acme"},
		{"Jane", "Skills", "Go", "Rust"},
		{"Jane", "555", "mail", "city", "site", "Education", "MIT"},
		{"one"},
		{},
	}

	s := Default()
	for _, paras := range docs {
		doc := NewDocument(paras...)
		split := s.Split(doc)

		header := map[string]bool{}
		for _, h := range split.Header() {
			header[h] = true
		}
		body := split.Body()
		for _, line := range strings.Split(body, "\n") {
			if line != "" && header[line] {
				t.Errorf("doc %q: %q appears in both header and body", paras, line)
			}
		}

		// Every non-blank paragraph lands on exactly one side.
		nonBlank := 0
		for _, p := range paras {
			if strings.TrimSpace(p) != "" {
				nonBlank++
			}
		}
		bodyLines := 0
		if body != "" {
			bodyLines = len(strings.Split(body, "\n"))
		}
		if got := len(split.Header()) + bodyLines; got != nonBlank {
			t.Errorf("doc %q: header+body = %d lines, want %d", paras, got, nonBlank)
		}
	}
}

func TestSplitRole(t *testing.T) {
	split := Default().Split(NewDocument("Jane", "", "Experience", "Acme"))
	wants := []Role{RoleHeader, RoleBlank, RoleBody, RoleBody, RoleBlank}
	for i, want := range wants {
		if got := split.Role(i); got != want {
			t.Errorf("Role(%d) = %v, want %v", i, got, want)
		}
	}
	if split.Boundary != 2 {
		t.Errorf("Boundary = %d, want 2", split.Boundary)
	}
}

func TestEndToEndScenario(t *testing.T) {
	doc := NewDocument("Jane Doe", "555-1234", "jane@x.com", "", "Experience", "Built X using Y, improved Z by 20%")
	s := Default()
	split := s.Split(doc)

	wantHeader := []string{"Jane Doe", "555-1234", "jane@x.com"}
	if got := split.Header(); !reflect.DeepEqual(got, wantHeader) {
		t.Errorf("Header() = %q, want %q", got, wantHeader)
	}
	wantBody := "Experience\nBuilt X using Y, improved Z by 20%"
	if got := split.Body(); got != wantBody {
		t.Errorf("Body() = %q, want %q", got, wantBody)
	}
}

func TestRebuildStyling(t *testing.T) {
	s := Default()
	header := []string{"Jane Doe", "jane@x.com"}
	optimized := "SKILLS\nManaged a team of 5\n\n   \nSummary of work\r\nEducation: MIT"

	doc := s.Rebuild(header, optimized)

	want := []Paragraph{
		{Text: "Jane Doe", Bold: true, Size: 12, Align: AlignCenter, Style: StyleNormal},
		{Text: "jane@x.com", Bold: true, Size: 12, Align: AlignCenter, Style: StyleNormal},
		{Style: StyleNormal},
		{Text: "SKILLS", Bold: true, Size: 14, Style: StyleNormal},
		{Text: "Managed a team of 5", Style: StyleNormal},
		{Text: "Summary of work", Bold: true, Size: 14, Style: StyleNormal},
		{Text: "Education: MIT", Bold: true, Size: 14, Style: StyleNormal},
	}
	if !reflect.DeepEqual(doc.Paragraphs, want) {
		t.Errorf("Rebuild() =\n%+v\nwant\n%+v", doc.Paragraphs, want)
	}
}

func TestRebuildParagraphCount(t *testing.T) {
	tests := []struct {
		header    []string
		optimized string
		want      int
	}{
		{nil, "", 1},
		{[]string{"A"}, "x\ny", 4},
		{[]string{"A", "B", "C"}, "\n\nline\n\n", 5},
	}
	s := Default()
	for _, tt := range tests {
		if got := s.Rebuild(tt.header, tt.optimized).Len(); got != tt.want {
			t.Errorf("Rebuild(%q, %q) has %d paragraphs, want %d", tt.header, tt.optimized, got, tt.want)
		}
	}
}

func TestRebuildDeterministic(t *testing.T) {
	s := Default()
	header := []string{"Jane Doe", "555-1234"}
	optimized := "Summary\nGo developer\nExperience\n- Built X"

	first := s.Rebuild(header, optimized)
	for i := 0; i < 5; i++ {
		if next := s.Rebuild(header, optimized); !reflect.DeepEqual(first, next) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, next)
		}
	}
}

func TestClassify(t *testing.T) {
	s := Default()
	tests := []struct {
		line string
		want Role
	}{
		{"Skills", RoleSectionTitle},
		{"skills & tools", RoleSectionTitle},
		{"  Objective", RoleBody},
		{"\tSkills", RoleBody},
		{"Managed a team of 5", RoleBody},
		{"Core skills", RoleBody},
		{"", RoleBlank},
	}
	for _, tt := range tests {
		if got := s.Classify(tt.line); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestCustomLabels(t *testing.T) {
	s := &Segmenter{
		Detector: NewPositionalDetector(3, "berufserfahrung"),
		Titles:   NewLabels("Berufserfahrung", "ÜBER MICH", " "),
	}
	doc := NewDocument("Max Mustermann", "BERUFSERFAHRUNG", "Firma")
	if got := s.ExtractHeader(doc); !reflect.DeepEqual(got, []string{"Max Mustermann"}) {
		t.Errorf("ExtractHeader() = %q", got)
	}
	if got := s.Classify("Über mich"); got != RoleSectionTitle {
		t.Errorf("Classify(Über mich) = %v, want section title", got)
	}
	if n := len(s.Titles.Words()); n != 2 {
		t.Errorf("blank label kept: %d words", n)
	}
}

func TestNewPositionalDetectorDefaultLimit(t *testing.T) {
	d := NewPositionalDetector(0)
	if d.HeaderLimit != DefaultHeaderLimit {
		t.Errorf("HeaderLimit = %d, want %d", d.HeaderLimit, DefaultHeaderLimit)
	}
	if !d.Stop.Empty() {
		t.Error("expected no stop keywords")
	}
}
