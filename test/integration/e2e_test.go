//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/environmint/envmint/internal/catalog"
	"github.com/environmint/envmint/internal/config"
	"github.com/environmint/envmint/internal/engine"
	"github.com/environmint/envmint/internal/probe"
	"github.com/environmint/envmint/internal/script"
	"github.com/environmint/envmint/internal/shell"
	"github.com/environmint/envmint/internal/userdata"
)

// openSession initializes the home directory and wires a Bash session the
// way the CLI does.
func openSession(t *testing.T) (*engine.Session, config.Settings) {
	t.Helper()

	var out bytes.Buffer
	if err := userdata.InitGlobal(&out); err != nil {
		t.Fatalf("InitGlobal: %v", err)
	}

	settingsPath, err := userdata.GetSettingsPath()
	if err != nil {
		t.Fatal(err)
	}
	store := config.New(settingsPath, nil)
	if err := store.Set(config.KeyDefaultScriptLang, "bash"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(config.KeyRespectGitignore, "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	settings, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	catalogPath, err := userdata.GetCatalogPath()
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Open(catalogPath, settings.Dialect(), nil)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}

	envFile, err := userdata.GetProbeEnvPath()
	if err != nil {
		t.Fatal(err)
	}
	opts := engine.OptionsFromSettings(settings)
	opts.Runner = &probe.ExecRunner{EnvFile: envFile}
	return engine.New(cat, opts), settings
}

// TestFullFlowScanRecommendGenerate covers the main path:
// init -> scan a project -> recommend -> select -> generate -> save.
func TestFullFlowScanRecommendGenerate(t *testing.T) {
	env := setupTestEnv(t)
	setupProject(t, env.ProjectDir)

	s, settings := openSession(t)
	if s.Dialect != shell.Bash {
		t.Fatalf("dialect = %s, want Bash", s.Dialect)
	}
	assertDirExists(t, filepath.Join(env.HomeDir, userdata.ScriptsDir))
	assertFileExists(t, filepath.Join(env.HomeDir, userdata.CatalogFile))
	assertFileExists(t, filepath.Join(env.HomeDir, userdata.SettingsFile))

	// Step 1: scan.
	res, set, err := s.Scan(context.Background(), env.ProjectDir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for _, tech := range []string{"Node.js", "React", "Go", "Gin", "Docker"} {
		if !res.Has(tech) {
			t.Errorf("expected %s to be detected; got %v", tech, res.Detected())
		}
	}
	if res.Has("Vue.js") {
		t.Error("node_modules should not be scanned with respect_gitignore set")
	}
	if res.Versions["Go"] != "1.22" || res.Versions["Node.js"] != "20" {
		t.Errorf("versions = %v", res.Versions)
	}

	// Step 2: recommendations reuse the seeded catalog.
	for _, cat := range []string{"Node.js Development", "React Development", "Go Development", "Containerization"} {
		if _, ok := set.Category(cat); !ok {
			t.Errorf("missing category %q", cat)
		}
	}
	node, _ := set.Category("Node.js Development")
	if node.Tools[0].InstallCommand != "brew install node" {
		t.Errorf("Node.js should come from the catalog, got %+v", node.Tools[0])
	}

	// Step 3: select and generate.
	if _, err := s.SelectCategory("Go Development"); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}
	if err := s.SelectByName("Git"); err != nil {
		t.Fatalf("SelectByName: %v", err)
	}
	text, err := s.Generate(settings.DefaultEnvironment)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := shell.CheckSyntax(text, shell.Bash); err != nil {
		t.Fatalf("generated script does not parse: %v", err)
	}
	assertContains(t, text, "brew install go")
	assertContains(t, text, "brew install git")

	// Step 4: save where the CLI would.
	dir, err := userdata.GetScriptsDir()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, script.FileName(settings.DefaultEnvironment, s.Dialect))
	if err := os.WriteFile(path, []byte(text), 0755); err != nil {
		t.Fatal(err)
	}
	assertFileExists(t, filepath.Join(env.HomeDir, "scripts", "DevEnvironment_Setup.sh"))

	var doctor bytes.Buffer
	if err := userdata.CheckUserdata(&doctor, false); err != nil {
		t.Fatalf("CheckUserdata: %v", err)
	}
	assertContains(t, doctor.String(), "[ OK ] "+dir+" exists")
}

// TestProbeWithRealShell runs validation scripts through sh, with extra
// variables from probe.env.
func TestProbeWithRealShell(t *testing.T) {
	requireSh(t)
	env := setupTestEnv(t)
	s, _ := openSession(t)

	writeFile(t, filepath.Join(env.HomeDir, userdata.ProbeEnvFile), "ENVMINT_TEST_MARK=present\n")
	for _, tool := range []catalog.Tool{
		{Name: "Marker", ValidationScript: `printf %s "$ENVMINT_TEST_MARK"`},
		{Name: "Absent", ValidationScript: "exit 3"},
		{Name: "Silent", ValidationScript: "true"},
		{Name: "Manual"},
	} {
		if err := s.Catalog.Add(tool); err != nil {
			t.Fatalf("Add(%s): %v", tool.Name, err)
		}
	}

	results, err := s.ProbeCatalog(context.Background())
	if err != nil {
		t.Fatalf("ProbeCatalog: %v", err)
	}
	want := map[string]bool{"Marker": true, "Absent": false, "Silent": false, "Manual": false}
	for name, installed := range want {
		if results[name] != installed {
			t.Errorf("%s installed = %v, want %v", name, results[name], installed)
		}
	}

	// The results are persisted.
	reopened, err := catalog.Open(s.Catalog.Path(), shell.Bash, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]bool)
	for _, tool := range reopened.Tools() {
		if _, ok := want[tool.Name]; ok {
			got[tool.Name] = tool.IsInstalled
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("persisted = %v, want %v", got, want)
	}
}
