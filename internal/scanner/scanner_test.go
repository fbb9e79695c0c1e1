package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

// writeTree creates files under root. Keys ending in "/" create empty
// directories.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(p, 0755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func scanTree(t *testing.T, files map[string]string) *Result {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, files)
	res, err := New(nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return res
}

func TestScan_Detection(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    []string
		notWant []string
	}{
		{
			name:  "react package",
			files: map[string]string{"package.json": `{"dependencies":{"react":"^18.2.0"}}`},
			want:  []string{"Node.js", "React"},
		},
		{
			name:    "malformed package.json keeps presence",
			files:   map[string]string{"package.json": `{"dependencies": {"react": `},
			want:    []string{"Node.js"},
			notWant: []string{"React"},
		},
		{
			name:  "go module",
			files: map[string]string{"go.mod": "module x\n\ngo 1.21\n\nrequire github.com/gin-gonic/gin v1.9.1\n"},
			want:  []string{"Go", "Gin"},
		},
		{
			name:  "android cross signal",
			files: map[string]string{"android/app/Main.java": "class Main {}"},
			want:  []string{"Java", "Android"},
		},
		{
			name:    "java without android dir",
			files:   map[string]string{"src/Main.java": "class Main {}"},
			want:    []string{"Java"},
			notWant: []string{"Android"},
		},
		{
			name:  "ios cross signal",
			files: map[string]string{"ios/App/AppDelegate.swift": "import UIKit", "ios/Podfile": ""},
			want:  []string{"Swift", "iOS"},
		},
		{
			name:  "django needs both signals",
			files: map[string]string{"manage.py": "", "migrations/": ""},
			want:  []string{"Django", "Python"},
		},
		{
			name:    "manage.py alone is not django",
			files:   map[string]string{"manage.py": ""},
			notWant: []string{"Django"},
		},
		{
			name:  "database connection strings",
			files: map[string]string{"config/app.env": "DATABASE_URL=postgresql://db:5432/app\nCACHE=redis://cache:6379\n"},
			want:  []string{"PostgreSQL", "Redis"},
		},
		{
			name:    "all-of clause needs every literal",
			files:   map[string]string{"appsettings.json": `{"conn": "Server=db;"}`},
			notWant: []string{"SQL Server"},
		},
		{
			name:  "all-of clause satisfied",
			files: map[string]string{"appsettings.json": `{"conn": "Server=db;Database=app;"}`},
			want:  []string{"SQL Server"},
		},
		{
			name:  "flask in root app.py",
			files: map[string]string{"app.py": "from flask import Flask\napp = Flask(__name__)\n"},
			want:  []string{"Flask", "Python"},
		},
		{
			name:    "flask grep only looks at root app.py",
			files:   map[string]string{"tools/app.py": "from flask import Flask\n"},
			want:    []string{"Python"},
			notWant: []string{"Flask"},
		},
		{
			name:    "css frameworks only in markup and styles",
			files:   map[string]string{"site/index.html": `<link href="bootstrap.min.css">`, "notes.txt": "tailwind"},
			want:    []string{"Bootstrap", "HTML"},
			notWant: []string{"Tailwind CSS"},
		},
		{
			name:  "kubernetes manifest",
			files: map[string]string{"deploy/app.yml": "apiVersion: apps/v1\nkind: Deployment\n"},
			want:  []string{"Kubernetes"},
		},
		{
			name:  "file name signals cloud provider",
			files: map[string]string{"infra/aws-config.txt": "region=eu-west-1"},
			want:  []string{"AWS"},
		},
		{
			name:  "git and ci directories",
			files: map[string]string{".git/HEAD": "ref: refs/heads/main\n", ".github/workflows/ci.yml": "on: push\n"},
			want:  []string{"Git", "GitHub Actions"},
		},
		{
			name: "dependency directories are scanned without the filter",
			files: map[string]string{
				"node_modules/x/index.ts":  "export const x = 1;",
				"node_modules/db/index.js": `connect("mongodb://localhost")`,
				"vendor/lib.go":            "package lib",
			},
			want: []string{"TypeScript", "JavaScript", "MongoDB", "Go"},
		},
		{
			name: "nested project file",
			files: map[string]string{
				"src/Api/Api.csproj": `<Project Sdk="Microsoft.NET.Sdk.Web"><PropertyGroup><TargetFramework>net8.0</TargetFramework></PropertyGroup></Project>`,
				"src/Api/Program.cs": "var app = WebApplication.Create();",
			},
			want: []string{".NET", ".NET Core/.NET 5+", "ASP.NET", "C#"},
		},
		{
			name:  "manifest names match case-insensitively",
			files: map[string]string{"cargo.toml": "[package]\nname = \"x\"\n"},
			want:  []string{"Rust"},
		},
		{
			name:  "empty tree",
			files: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scanTree(t, tt.files)
			for _, tech := range tt.want {
				if !res.Has(tech) {
					t.Errorf("expected %q detected, got %v", tech, res.Detected())
				}
			}
			for _, tech := range tt.notWant {
				if res.Has(tech) {
					t.Errorf("did not expect %q, got %v", tech, res.Detected())
				}
			}
			if len(tt.files) == 0 && !res.Empty() {
				t.Errorf("empty tree detected %v", res.Detected())
			}
		})
	}
}

func TestScan_Versions(t *testing.T) {
	res := scanTree(t, map[string]string{
		"package.json": `{"engines":{"node":">=20"},"dependencies":{"react":"^18.2.0"}}`,
		"go.mod":       "module x\n\ngo 1.21\n",
		"Gemfile":      "ruby '3.2.2'\ngem 'rails', '7.1.0'\n",
	})
	want := map[string]string{
		"Node.js":       "20",
		"React":         "18.2.0",
		"Go":            "1.21",
		"Ruby":          "3.2.2",
		"Ruby on Rails": "7.1.0",
	}
	for tech, v := range want {
		if got := res.Versions[tech]; got != v {
			t.Errorf("Versions[%q] = %q, want %q", tech, got, v)
		}
	}
}

func TestScan_SkipsOversizedAndBinaryFiles(t *testing.T) {
	big := "mongodb://localhost/app\n" + strings.Repeat("x", DefaultMaxFileSize+1)
	res := scanTree(t, map[string]string{
		"dump.txt": big,
		"blob.bin": "\x00\x01postgres://db/app",
	})
	for _, tech := range []string{"MongoDB", "PostgreSQL"} {
		if res.Has(tech) {
			t.Errorf("%s detected from a file that should be skipped", tech)
		}
	}
}

func TestScan_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json":       `{"dependencies":{"vue":"3.4.0","express":"4.18.0"}}`,
		"src/server.ts":      `import mongoose from "mongoose"`,
		"docker-compose.yml": "services: {}\n",
		"requirements.txt":   "fastapi==0.110.0\n",
	})

	s := New(nil)
	first, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("scans differ:\n%v\n%v", first, second)
	}
}

func TestScan_UnreadableRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, root := range []string{filepath.Join(dir, "missing"), file} {
		res, err := New(nil).Scan(context.Background(), root)
		if res != nil {
			t.Errorf("Scan(%s) returned a result", root)
		}
		var ioErr *IOError
		if !errors.As(err, &ioErr) {
			t.Errorf("Scan(%s) error = %v, want *IOError", root, err)
		}
	}
}

func TestScan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"package.json": `{}`, "a.js": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := New(nil).Scan(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Error("cancelled scan returned a result")
	}
}

func TestScan_RespectGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":       "# generated code\ngenerated/\n",
		"generated/gen.py": "print('x')\n",
	})

	s := New(nil)
	res, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Has("Python") {
		t.Error("expected Python when .gitignore is not respected")
	}

	s.RespectGitignore = true
	res, err = s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if res.Has("Python") {
		t.Error("ignored directory was scanned")
	}
}

func TestScan_FilterSkipsDependencyDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/HEAD":                "ref: refs/heads/main\n",
		"node_modules/x/index.ts":  "export const x = 1;",
		"node_modules/db/index.js": `connect("mongodb://localhost")`,
		"vendor/lib.go":            "package lib",
	})

	s := New(nil)
	s.RespectGitignore = true
	res, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	for _, tech := range []string{"TypeScript", "JavaScript", "MongoDB"} {
		if res.Has(tech) {
			t.Errorf("%s detected inside node_modules with the filter enabled", tech)
		}
	}
	if !res.Has("Go") || !res.Has("Git") {
		t.Errorf("Technologies = %v, want Go and Git", res.Technologies)
	}
}

func TestScan_SkipsUnreadableSubtree(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits do not restrict reads on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root can read any directory")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":        "module example.com/app\n\ngo 1.22\n",
		"main.go":       "package main",
		"locked/app.py": "print('hidden')\n",
		"open/app.rb":   "puts 1",
	})
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	res, err := New(nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !res.Has("Go") || !res.Has("Ruby") {
		t.Errorf("Technologies = %v, want Go and Ruby", res.Technologies)
	}
	if res.Has("Python") {
		t.Error("unreadable directory was scanned")
	}
}

func TestScan_CustomRules(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"deploy.nomad": `job "api" {}`,
		"Tiltfile":     "",
	})

	s := New(nil)
	s.Rules = []Rule{
		{Kind: ExtensionCensus, Extensions: []string{".nomad"}, Technologies: []string{"Nomad"}},
		{Kind: ManifestPresence, Paths: []string{"Tiltfile"}, Technologies: []string{"Tilt"}},
		{Kind: ContentGrep, Match: []Clause{{"job", "{"}}, Technologies: []string{"HCL"}},
		{Kind: CrossSignal, Conditions: []Condition{{Path: "missing"}}, Technologies: []string{"Never"}},
	}
	res, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"HCL", "Nomad", "Tilt"}
	if got := res.Detected(); !reflect.DeepEqual(got, want) {
		t.Errorf("Detected() = %v, want %v", got, want)
	}
}

func TestIsBinary(t *testing.T) {
	late := strings.Repeat("a", binarySniffLen) + "\x00"
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"text", "hello", false},
		{"leading zero", "\x00abc", true},
		{"zero after sniff window", late, false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBinary([]byte(tt.data)); got != tt.want {
				t.Errorf("isBinary = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if got := ContentGrep.String(); got != "content-grep" {
		t.Errorf("ContentGrep.String() = %q", got)
	}
	if got := Kind(0).String(); got != "unknown" {
		t.Errorf("Kind(0).String() = %q", got)
	}
}
