package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/tools.schema.json
var schemaBytes []byte

var (
	toolsSchema    *jsonschema.Schema
	toolsSchemaErr error
	schemaOnce     sync.Once
	printer        = message.NewPrinter(language.English)
)

// Issue is one schema violation.
type Issue struct {
	// Field is the offending property inside the entry, or the document
	// location for file-level issues. Empty means the node itself.
	Field   string
	Keyword string
	Message string
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// EntryIssues collects the violations of one tools entry.
type EntryIssues struct {
	// Index is the position in the tools list.
	Index int
	// Tool is the entry's name, or "#<n>" when it has none.
	Tool   string
	Issues []Issue
}

// Report is the schema check of one catalog file. File issues make the
// whole file unusable; entry issues only disqualify that entry.
type Report struct {
	File    []Issue
	Entries []EntryIssues
}

// Valid reports whether the file has no issues at all.
func (r *Report) Valid() bool { return len(r.File) == 0 && len(r.Entries) == 0 }

// Usable reports whether the tools list can be read at all.
func (r *Report) Usable() bool { return len(r.File) == 0 }

// Rejected reports whether the entry at index i failed the schema.
func (r *Report) Rejected(i int) bool {
	for _, e := range r.Entries {
		if e.Index == i {
			return true
		}
	}
	return false
}

// ByTool maps each rejected entry's name to its issues.
func (r *Report) ByTool() map[string][]Issue {
	out := make(map[string][]Issue, len(r.Entries))
	for _, e := range r.Entries {
		out[e.Tool] = append(out[e.Tool], e.Issues...)
	}
	return out
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			toolsSchemaErr = fmt.Errorf("reading catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("tools.schema.json", doc); err != nil {
			toolsSchemaErr = fmt.Errorf("adding catalog schema: %w", err)
			return
		}
		if toolsSchema, err = c.Compile("tools.schema.json"); err != nil {
			toolsSchemaErr = fmt.Errorf("compiling catalog schema: %w", err)
		}
	})
	return toolsSchema, toolsSchemaErr
}

// Validate checks raw tools.yaml bytes against the catalog schema. The
// error return covers YAML syntax and schema compilation; violations are
// sorted into the Report by the tools entry they belong to.
func Validate(data []byte) (*Report, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	raw = jsonCompatible(raw)

	// The validator wants json.Number values, so round-trip through JSON.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting catalog to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("converting catalog to JSON: %w", err)
	}

	report := &Report{}
	err = schema.Validate(inst)
	if err == nil {
		return report, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}

	entries := make(map[int]*EntryIssues)
	for _, leaf := range leaves(ve) {
		issue := Issue{Keyword: leaf.keyword, Message: leaf.message}
		i, field, ok := entryLocation(leaf.location)
		if !ok {
			issue.Field = "/" + strings.Join(leaf.location, "/")
			if len(leaf.location) == 0 {
				issue.Field = ""
			}
			report.File = appendIssue(report.File, issue)
			continue
		}
		issue.Field = field
		e, seen := entries[i]
		if !seen {
			e = &EntryIssues{Index: i, Tool: entryName(raw, i)}
			entries[i] = e
		}
		e.Issues = appendIssue(e.Issues, issue)
	}
	for _, e := range entries {
		report.Entries = append(report.Entries, *e)
	}
	sort.Slice(report.Entries, func(a, b int) bool { return report.Entries[a].Index < report.Entries[b].Index })
	if len(report.File) == 0 && len(report.Entries) == 0 {
		report.File = []Issue{{Message: ve.Error()}}
	}
	return report, nil
}

type leaf struct {
	location []string
	keyword  string
	message  string
}

// leaves flattens the error tree. Wrapper nodes for $ref and allOf only
// repeat their causes and are dropped.
func leaves(ve *jsonschema.ValidationError) []leaf {
	if len(ve.Causes) > 0 {
		var out []leaf
		for _, c := range ve.Causes {
			out = append(out, leaves(c)...)
		}
		return out
	}
	if ve.ErrorKind == nil {
		return nil
	}
	kw := ""
	if p := ve.ErrorKind.KeywordPath(); len(p) > 0 {
		kw = p[len(p)-1]
	}
	if kw == "" || kw == "$ref" || kw == "allOf" {
		return nil
	}
	return []leaf{{location: ve.InstanceLocation, keyword: kw, message: ve.ErrorKind.LocalizedString(printer)}}
}

// entryLocation splits an instance location of the form tools/<i>/...
// into the entry index and the field path inside it.
func entryLocation(loc []string) (int, string, bool) {
	if len(loc) < 2 || loc[0] != "tools" {
		return 0, "", false
	}
	i, err := strconv.Atoi(loc[1])
	if err != nil {
		return 0, "", false
	}
	return i, strings.Join(loc[2:], "/"), true
}

// entryName returns the name of tools[i] when it is a non-blank string.
func entryName(raw interface{}, i int) string {
	fallback := "#" + strconv.Itoa(i+1)
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return fallback
	}
	list, ok := doc["tools"].([]interface{})
	if !ok || i >= len(list) {
		return fallback
	}
	entry, ok := list[i].(map[string]interface{})
	if !ok {
		return fallback
	}
	if name, ok := entry["name"].(string); ok && strings.TrimSpace(name) != "" {
		return name
	}
	return fallback
}

func appendIssue(issues []Issue, issue Issue) []Issue {
	for _, have := range issues {
		if have == issue {
			return issues
		}
	}
	return append(issues, issue)
}

// jsonCompatible rewrites yaml.v3 maps with non-string keys so the value
// can be JSON encoded.
func jsonCompatible(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = jsonCompatible(item)
		}
		return val
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return m
	case []interface{}:
		for i, item := range val {
			val[i] = jsonCompatible(item)
		}
		return val
	default:
		return val
	}
}
