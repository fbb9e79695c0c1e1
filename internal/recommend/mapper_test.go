package recommend

import (
	"reflect"
	"sort"
	"testing"

	"github.com/environmint/envmint/internal/catalog"
	"github.com/environmint/envmint/internal/shell"
)

type detection map[string]bool

func (d detection) Detected() []string {
	var out []string
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (d detection) Has(tech string) bool { return d[tech] }

func detect(techs ...string) detection {
	d := detection{}
	for _, t := range techs {
		d[t] = true
	}
	return d
}

func toolNames(tools []catalog.Tool) []string {
	out := make([]string, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.Name)
	}
	return out
}

func categoryTools(t *testing.T, set *Set, name string) []string {
	t.Helper()
	c, ok := set.Category(name)
	if !ok {
		t.Fatalf("category %q missing; have %v", name, categoryNames(set))
	}
	return toolNames(c.Tools)
}

func categoryNames(set *Set) []string {
	var out []string
	for _, c := range set.Categories {
		out = append(out, c.Name)
	}
	return out
}

func TestBuild_EmptyDetectionYieldsBaseline(t *testing.T) {
	set := New(shell.PowerShell).Build(detect(), nil)
	if set.Len() != 1 {
		t.Fatalf("categories = %v, want only %q", categoryNames(set), General)
	}
	want := []string{"Git", "Visual Studio Code"}
	if got := categoryTools(t, set, General); !reflect.DeepEqual(got, want) {
		t.Errorf("baseline = %v, want %v", got, want)
	}
}

func TestBuild_React(t *testing.T) {
	set := New(shell.PowerShell).Build(detect("Node.js", "React"), nil)

	if got := categoryTools(t, set, "React Development"); !reflect.DeepEqual(got, []string{"Node.js", "Visual Studio Code"}) {
		t.Errorf("React Development = %v", got)
	}
	if got := categoryTools(t, set, "Node.js Development"); !reflect.DeepEqual(got, []string{"Node.js", "npm"}) {
		t.Errorf("Node.js Development = %v", got)
	}
	// VS Code is already recommended, so only Git lands in General.
	if got := categoryTools(t, set, General); !reflect.DeepEqual(got, []string{"Git"}) {
		t.Errorf("General = %v, want [Git]", got)
	}
	wantOrder := []string{"Node.js Development", "React Development", General}
	if got := categoryNames(set); !reflect.DeepEqual(got, wantOrder) {
		t.Errorf("category order = %v, want %v", got, wantOrder)
	}
}

func TestBuild_ReusesCatalogRecords(t *testing.T) {
	tools := []catalog.Tool{{
		Name:             "Node.js",
		Version:          "20.11.0",
		Category:         "Runtimes",
		InstallCommand:   "choco install nodejs",
		ValidationScript: "node --version",
	}}
	set := New(shell.PowerShell).Build(detect("Node.js"), tools)

	c, _ := set.Category("Node.js Development")
	if c.Tools[0] != tools[0] {
		t.Errorf("catalog record not reused: %+v", c.Tools[0])
	}
	npm := c.Tools[1]
	if npm.Version != SynthesizedVersion || npm.Category != SynthesizedCategory {
		t.Errorf("synthesized npm = %+v", npm)
	}
	if npm.InstallCommand != "winget install OpenJS.NodeJS" {
		t.Errorf("npm install = %q", npm.InstallCommand)
	}
}

func TestBuild_DedupesWithinCategoryOnly(t *testing.T) {
	set := New(shell.PowerShell).Build(detect("Docker", "Docker Compose", "Kubernetes", "Spring Boot", "Java"), nil)

	if got := categoryTools(t, set, "Containerization"); !reflect.DeepEqual(got, []string{"Docker Desktop", "kubectl"}) {
		t.Errorf("Containerization = %v", got)
	}
	// JDK appears once in each of its two categories.
	if got := categoryTools(t, set, "Java Development"); !reflect.DeepEqual(got, []string{"JDK"}) {
		t.Errorf("Java Development = %v", got)
	}
	if got := categoryTools(t, set, "Spring Boot Development"); !reflect.DeepEqual(got, []string{"JDK", "IntelliJ IDEA"}) {
		t.Errorf("Spring Boot Development = %v", got)
	}
}

func TestBuild_ConditionalEntries(t *testing.T) {
	tests := []struct {
		name  string
		techs []string
		want  []string
	}{
		{"java only", []string{"Java"}, []string{"JDK"}},
		{"maven project", []string{"Java", "Maven"}, []string{"JDK", "Maven"}},
		{"both build tools", []string{"Java", "Maven", "Gradle"}, []string{"JDK", "Maven", "Gradle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := New(shell.PowerShell).Build(detect(tt.techs...), nil)
			if got := categoryTools(t, set, "Java Development"); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Java Development = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuild_BaselineUsesSubstringMatch(t *testing.T) {
	set := New(shell.PowerShell).Build(detect("Git"), nil)
	if got := categoryTools(t, set, "Version Control"); !reflect.DeepEqual(got, []string{"Git"}) {
		t.Errorf("Version Control = %v", got)
	}
	if got := categoryTools(t, set, General); !reflect.DeepEqual(got, []string{"Visual Studio Code"}) {
		t.Errorf("General = %v, want only VS Code", got)
	}
}

func TestBuild_UnknownTechnologyIgnored(t *testing.T) {
	set := New(shell.PowerShell).Build(detect("COBOL", "react"), nil)
	if got := categoryNames(set); !reflect.DeepEqual(got, []string{General}) {
		t.Errorf("categories = %v, want only %q", got, General)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	d := detect("Python", "Django", "PostgreSQL", "Docker", "AWS", "TypeScript", "Node.js")
	m := New(shell.Bash)
	first := m.Build(d, catalog.Seed(shell.Bash))
	for i := 0; i < 5; i++ {
		if next := m.Build(d, catalog.Seed(shell.Bash)); !reflect.DeepEqual(first, next) {
			t.Fatalf("Build is not deterministic:\n%+v\n%+v", first, next)
		}
	}
}

func TestBuild_DialectSelectsCommands(t *testing.T) {
	set := New(shell.Bash).Build(detect("Go"), nil)
	c, _ := set.Category("Go Development")
	if got := c.Tools[0].InstallCommand; got != "brew install go" {
		t.Errorf("install = %q", got)
	}
	if got := c.Tools[0].ValidationScript; got != `command -v go >/dev/null 2>&1 && echo "Go is installed"` {
		t.Errorf("validation = %q", got)
	}

	// No Bash installer exists for Visual Studio.
	set = New(shell.Bash).Build(detect("Visual Studio"), nil)
	c, _ = set.Category("Development Environment")
	if c.Tools[0].InstallCommand != "" {
		t.Errorf("expected empty install command, got %q", c.Tools[0].InstallCommand)
	}
}

func TestDefaultTableToolsHaveSpecs(t *testing.T) {
	for tech, entries := range DefaultTable {
		for _, e := range entries {
			if _, ok := DefaultTools[e.Tool]; !ok {
				t.Errorf("%s recommends %q which has no ToolSpec", tech, e.Tool)
			}
		}
	}
	for _, name := range Baseline {
		if _, ok := DefaultTools[name]; !ok {
			t.Errorf("baseline tool %q has no ToolSpec", name)
		}
	}
}

func TestVersionMismatch(t *testing.T) {
	tests := []struct {
		pinned, required string
		want             bool
	}{
		{"16.20.0", "18", true},
		{"20.1.0", "18", false},
		{"3.9", "3.10", true},
		{"1.21", "1.21", false},
		{"Latest", "18", false},
		{"18.0.0", "lts", false},
		{"", "1.0", false},
	}
	for _, tt := range tests {
		if got := VersionMismatch(tt.pinned, tt.required); got != tt.want {
			t.Errorf("VersionMismatch(%q, %q) = %v, want %v", tt.pinned, tt.required, got, tt.want)
		}
	}
}

func TestMismatches(t *testing.T) {
	tools := []catalog.Tool{
		{Name: "Node.js", Version: "16.0.0"},
		{Name: "Python", Version: "3.12.1"},
	}
	m := New(shell.PowerShell)
	set := m.Build(detect("Node.js", "Python"), tools)
	got := m.Mismatches(set, map[string]string{"Node.js": "18", "Python": "3.11"})
	want := []Mismatch{{Tool: "Node.js", Technology: "Node.js", Pinned: "16.0.0", Required: "18"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Mismatches = %+v, want %+v", got, want)
	}
}

func TestSetAllTools(t *testing.T) {
	set := New(shell.PowerShell).Build(detect("React", "Vue.js"), nil)
	want := []string{"Node.js", "Visual Studio Code", "Git"}
	if got := toolNames(set.AllTools()); !reflect.DeepEqual(got, want) {
		t.Errorf("AllTools = %v, want %v", got, want)
	}
}
