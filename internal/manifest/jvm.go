package manifest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

type pomCoordinate struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomPlugin struct {
	pomCoordinate
	Configuration struct {
		Source  string `xml:"source"`
		Release string `xml:"release"`
	} `xml:"configuration"`
}

type pomProject struct {
	Parent     pomCoordinate `xml:"parent"`
	Properties struct {
		JavaVersion    string `xml:"java.version"`
		CompilerSource string `xml:"maven.compiler.source"`
	} `xml:"properties"`
	Dependencies []pomCoordinate `xml:"dependencies>dependency"`
	Plugins      []pomPlugin     `xml:"build>plugins>plugin"`
}

var mavenGroups = []dependency{
	{"org.springframework.boot", "Spring Boot"},
	{"org.hibernate", "Hibernate"},
	{"org.hibernate.orm", "Hibernate"},
	{"junit", "JUnit"},
	{"org.junit.jupiter", "JUnit"},
}

// ParsePom reads the Java version from properties or the compiler plugin
// and flags well-known dependency groups.
func ParsePom(path string, data []byte) (*Findings, error) {
	var p pomProject
	if err := xml.NewDecoder(bytes.NewReader(stripBOM(data))).Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	f := NewFindings()
	switch {
	case p.Properties.JavaVersion != "":
		f.Version("Java", p.Properties.JavaVersion)
	case p.Properties.CompilerSource != "":
		f.Version("Java", p.Properties.CompilerSource)
	default:
		for _, pl := range p.Plugins {
			if pl.ArtifactID != "maven-compiler-plugin" {
				continue
			}
			src := pl.Configuration.Source
			if src == "" {
				src = pl.Configuration.Release
			}
			if src != "" && !isPropertyRef(src) {
				f.Version("Java", src)
			}
		}
	}

	coords := append([]pomCoordinate{p.Parent}, p.Dependencies...)
	for _, c := range coords {
		for _, g := range mavenGroups {
			if c.GroupID != g.Package {
				continue
			}
			if isPropertyRef(c.Version) {
				f.Flag(g.Technology)
			} else {
				f.Version(g.Technology, c.Version)
			}
		}
	}
	return f, nil
}

// isPropertyRef reports whether v is an unresolved ${...} reference.
func isPropertyRef(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), "${")
}

var (
	springStarterVersion = regexp.MustCompile(`spring-boot-starter-[a-zA-Z-]+:(\d+\.\d+\.\d+)`)
	springPluginVersion  = regexp.MustCompile(`org\.springframework\.boot['"]?\)?\s+version\s+['"]([^'"]+)['"]`)
)

// ParseGradle scans a Groovy or Kotlin build script for Spring Boot,
// Kotlin and Android plugin markers.
func ParseGradle(_ string, data []byte) (*Findings, error) {
	content := string(data)
	f := NewFindings()

	if strings.Contains(content, "org.springframework.boot") {
		f.Flag("Spring Boot")
		if m := springPluginVersion.FindStringSubmatch(content); m != nil {
			f.Version("Spring Boot", m[1])
		} else if m := springStarterVersion.FindStringSubmatch(content); m != nil {
			f.Version("Spring Boot", m[1])
		}
	}
	if strings.Contains(content, "org.jetbrains.kotlin") {
		f.Flag("Kotlin")
	}
	if strings.Contains(content, "com.android.application") || strings.Contains(content, "com.android.library") {
		f.Flag("Android")
	}
	return f, nil
}
