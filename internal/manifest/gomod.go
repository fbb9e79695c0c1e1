package manifest

import (
	"fmt"
	"strings"

	"golang.org/x/mod/modfile"
)

var goModules = []dependency{
	{"github.com/gin-gonic/gin", "Gin"},
	{"github.com/gorilla/mux", "Gorilla Mux"},
	{"github.com/labstack/echo", "Echo"},
	{"github.com/gofiber/fiber", "Fiber"},
	{"github.com/spf13/cobra", "Cobra"},
	{"gorm.io/gorm", "GORM"},
	{"github.com/jackc/pgx", "PostgreSQL"},
	{"github.com/lib/pq", "PostgreSQL"},
	{"github.com/go-sql-driver/mysql", "MySQL"},
	{"github.com/redis/go-redis", "Redis"},
	{"github.com/go-redis/redis", "Redis"},
	{"go.mongodb.org/mongo-driver", "MongoDB"},
	{"github.com/mattn/go-sqlite3", "SQLite"},
	{"modernc.org/sqlite", "SQLite"},
	{"github.com/aws/aws-sdk-go", "AWS"},
	{"cloud.google.com/go", "Google Cloud"},
	{"github.com/Azure/azure-sdk-for-go", "Azure"},
}

// ParseGoMod reads the go directive exactly as written and flags required
// modules by path prefix, so major-version suffixes like /v4 still match.
func ParseGoMod(path string, data []byte) (*Findings, error) {
	mf, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	f := NewFindings()
	if mf.Go != nil && mf.Go.Version != "" {
		f.Flag("Go")
		f.Versions["Go"] = mf.Go.Version
	}

	for _, d := range goModules {
		for _, req := range mf.Require {
			if req.Mod.Path == d.Package || strings.HasPrefix(req.Mod.Path, d.Package+"/") {
				f.Version(d.Technology, strings.TrimPrefix(req.Mod.Version, "v"))
				break
			}
		}
	}
	return f, nil
}
