package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

var pythonPackages = map[string]string{
	"django":     "Django",
	"flask":      "Flask",
	"fastapi":    "FastAPI",
	"sqlalchemy": "SQLAlchemy",
	"pytest":     "pytest",
	"numpy":      "NumPy",
	"pandas":     "Pandas",
	"tensorflow": "TensorFlow",
	"torch":      "PyTorch",
	"pytorch":    "PyTorch",
}

var requirementVersion = regexp.MustCompile(`[=~<>]+([0-9]+(\.[0-9]+)*)`)

// ParseRequirements reads a pip requirements file. Package names are
// compared case-insensitively; the first numeric version after a
// comparison operator is recorded.
func ParseRequirements(_ string, data []byte) (*Findings, error) {
	f := NewFindings()
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		applyRequirement(f, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading requirements: %w", err)
	}
	return f, nil
}

// applyRequirement handles one PEP 508 requirement string.
func applyRequirement(f *Findings, line string) {
	line = strings.TrimSpace(line)
	if i := strings.Index(line, "#"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" || strings.HasPrefix(line, "-") {
		return
	}

	name := line
	if i := strings.IndexAny(line, "=<>~![;@ \t"); i >= 0 {
		name = line[:i]
	}
	tech, ok := pythonPackages[strings.ToLower(name)]
	if !ok {
		return
	}
	f.Flag(tech)
	if m := requirementVersion.FindStringSubmatch(line); m != nil {
		f.Versions[tech] = m[1]
	}
}

type pipfileLock struct {
	Default map[string]struct {
		Version string `json:"version"`
	} `json:"default"`
}

// ParsePipfileLock reads the default section of a Pipfile.lock.
func ParsePipfileLock(path string, data []byte) (*Findings, error) {
	lock, err := parseTyped[pipfileLock](data, path)
	if err != nil {
		return nil, err
	}

	f := NewFindings()
	for _, pkg := range sortedKeys(lock.Default) {
		if tech, ok := pythonPackages[strings.ToLower(pkg)]; ok {
			f.Version(tech, lock.Default[pkg].Version)
		}
	}
	return f, nil
}

type pyProject struct {
	Project struct {
		RequiresPython string   `toml:"requires-python"`
		Dependencies   []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry *struct {
			Dependencies map[string]interface{} `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ParsePyProject reads PEP 621 [project] dependencies and Poetry's
// [tool.poetry.dependencies] table.
func ParsePyProject(path string, data []byte) (*Findings, error) {
	var p pyProject
	if _, err := toml.Decode(string(data), &p); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	f := NewFindings()
	if p.Project.RequiresPython != "" {
		f.Version("Python", p.Project.RequiresPython)
	}
	for _, req := range p.Project.Dependencies {
		applyRequirement(f, req)
	}

	if p.Tool.Poetry != nil {
		f.Flag("Poetry")
		deps := p.Tool.Poetry.Dependencies
		for _, name := range sortedKeys(deps) {
			v := deps[name]
			if name == "python" {
				f.Version("Python", versionString(v))
				continue
			}
			if tech, ok := pythonPackages[strings.ToLower(name)]; ok {
				f.Version(tech, versionString(v))
			}
		}
	}
	return f, nil
}
