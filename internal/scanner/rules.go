package scanner

import "github.com/environmint/envmint/internal/manifest"

// Kind selects how the interpreter evaluates a Rule.
type Kind int

const (
	// ManifestPresence flags Technologies when any of Paths exists
	// relative to the scan root.
	ManifestPresence Kind = iota + 1
	// ExtensionCensus flags Technologies when any file in the tree has
	// one of Extensions.
	ExtensionCensus
	// StructuredParse runs the manifest parser named by Parser over every
	// root-relative file in Paths and every file in the tree with one of
	// Extensions. Technologies and versions come from the parser.
	StructuredParse
	// ContentGrep flags Technologies when an eligible text file satisfies
	// any clause in Match, or its base name contains one of NameContains.
	ContentGrep
	// CrossSignal flags Technologies when every condition holds.
	CrossSignal
)

func (k Kind) String() string {
	switch k {
	case ManifestPresence:
		return "manifest-presence"
	case ExtensionCensus:
		return "extension-census"
	case StructuredParse:
		return "structured-parse"
	case ContentGrep:
		return "content-grep"
	case CrossSignal:
		return "cross-signal"
	}
	return "unknown"
}

// Clause matches when every literal occurs in the file content.
type Clause []string

// Condition is one operand of a CrossSignal rule. Exactly one of its
// fields is set.
type Condition struct {
	// Extensions holds when the census counted any of them.
	Extensions []string
	// Path holds when the root-relative file or directory exists.
	Path string
}

// Rule is one detection signature. Which fields are read depends on Kind.
type Rule struct {
	Kind         Kind
	Technologies []string

	Paths      []string
	Extensions []string
	Parser     string

	Match        []Clause
	FileNames    []string
	NameContains []string

	Conditions []Condition
}

func presence(paths []string, techs ...string) Rule {
	return Rule{Kind: ManifestPresence, Paths: paths, Technologies: techs}
}

func census(exts []string, techs ...string) Rule {
	return Rule{Kind: ExtensionCensus, Extensions: exts, Technologies: techs}
}

func parse(parser string, paths ...string) Rule {
	return Rule{Kind: StructuredParse, Parser: parser, Paths: paths}
}

func grep(tech string, scope []string, literals ...string) Rule {
	clauses := make([]Clause, len(literals))
	for i, l := range literals {
		clauses[i] = Clause{l}
	}
	return Rule{Kind: ContentGrep, Technologies: []string{tech}, Extensions: scope, Match: clauses}
}

func list(s ...string) []string { return s }

var (
	markupAndStyle = list(".html", ".htm", ".cshtml", ".razor", ".css", ".scss", ".sass", ".less")
	yamlFiles      = list(".yaml", ".yml")
	jsAndTS        = list(".js", ".ts")
)

// DefaultRules is the built-in rule battery, evaluated in order. Later
// rules never clear a flag set by an earlier one; when two parsers report
// a version for the same technology the later one wins.
var DefaultRules = []Rule{
	// Project and package manager files.
	presence(list("package.json"), "Node.js"),
	presence(list("yarn.lock"), "Yarn"),
	presence(list("pnpm-lock.yaml"), "pnpm"),
	presence(list("requirements.txt"), "Python"),
	presence(list("Pipfile", "Pipfile.lock"), "Python", "Pipenv"),
	presence(list("poetry.lock"), "Python", "Poetry"),
	presence(list("pyproject.toml"), "Python"),
	presence(list("pom.xml"), "Java", "Maven"),
	presence(list("build.gradle", "build.gradle.kts"), "Java", "Gradle"),
	presence(list("Gemfile"), "Ruby", "Bundler"),
	presence(list("composer.json"), "PHP", "Composer"),
	presence(list("go.mod"), "Go"),
	presence(list("Cargo.toml"), "Rust"),
	presence(list("CMakeLists.txt"), "CMake"),
	presence(list("Makefile"), "Make"),
	presence(list("pubspec.yaml"), "Flutter"),
	presence(list(".git"), "Git"),

	// Manifests with dependency and version information.
	parse(manifest.PackageJSON, "package.json"),
	parse(manifest.Requirements, "requirements.txt"),
	parse(manifest.PipfileLock, "Pipfile.lock"),
	parse(manifest.PyProject, "pyproject.toml"),
	parse(manifest.PomXML, "pom.xml"),
	parse(manifest.Gradle, "build.gradle", "build.gradle.kts"),
	parse(manifest.Gemfile, "Gemfile"),
	parse(manifest.ComposerJSON, "composer.json"),
	parse(manifest.GoMod, "go.mod"),
	parse(manifest.CargoTOML, "Cargo.toml"),
	{Kind: StructuredParse, Parser: manifest.MSBuild, Extensions: list(".csproj", ".fsproj", ".vbproj")},

	// Languages.
	census(list(".cs"), "C#"),
	census(list(".fs"), "F#"),
	census(list(".vb"), "Visual Basic"),
	census(list(".java"), "Java"),
	census(list(".kt", ".kts"), "Kotlin"),
	census(list(".py"), "Python"),
	census(list(".js"), "JavaScript"),
	census(list(".ts"), "TypeScript"),
	census(list(".jsx", ".tsx"), "React"),
	census(list(".rb"), "Ruby"),
	census(list(".php"), "PHP"),
	census(list(".go"), "Go"),
	census(list(".rs"), "Rust"),
	census(list(".swift"), "Swift"),
	census(list(".cpp", ".cc", ".cxx"), "C++"),
	census(list(".c"), "C"),
	census(list(".h", ".hpp"), "C/C++ Headers"),
	census(list(".html", ".htm"), "HTML"),
	census(list(".css"), "CSS"),
	census(list(".scss"), "SCSS"),
	census(list(".sass"), "Sass"),
	census(list(".less"), "Less"),
	census(list(".dart"), "Dart"),
	census(list(".ipynb"), "Jupyter Notebook"),
	census(list(".r"), "R"),
	census(list(".csproj", ".fsproj", ".vbproj"), ".NET"),
	census(list(".sln"), "Visual Studio"),
	{Kind: CrossSignal, Technologies: list("iOS"), Conditions: []Condition{
		{Extensions: list(".swift", ".m", ".h")},
		{Path: "ios"},
	}},
	{Kind: CrossSignal, Technologies: list("Android"), Conditions: []Condition{
		{Extensions: list(".java")},
		{Path: "android"},
	}},

	// Frameworks.
	presence(list("angular.json"), "Angular"),
	presence(list("vue.config.js"), "Vue.js"),
	census(list(".vue"), "Vue.js"),
	presence(list("next.config.js"), "Next.js"),
	presence(list("nuxt.config.js"), "Nuxt.js"),
	presence(list("svelte.config.js"), "Svelte"),
	census(list(".svelte"), "Svelte"),
	presence(list("config/routes.rb"), "Ruby on Rails"),
	{Kind: CrossSignal, Technologies: list("Django"), Conditions: []Condition{
		{Path: "manage.py"},
		{Path: "migrations"},
	}},
	{Kind: ContentGrep, Technologies: list("Flask"), FileNames: list("app.py"), Match: []Clause{{"Flask"}, {"flask"}}},
	presence(list("artisan"), "Laravel"),
	grep("Bootstrap", markupAndStyle, "bootstrap", "Bootstrap"),
	grep("Tailwind CSS", markupAndStyle, "tailwind", "Tailwind"),
	grep("Material UI", markupAndStyle, "material-ui", "MuiThemeProvider"),
	grep("Bulma", markupAndStyle, "bulma"),
	grep("Foundation", markupAndStyle, "foundation"),

	// Databases.
	grep("MongoDB", nil, "mongodb://", "mongodb+srv://"),
	grep("PostgreSQL", nil, "postgresql://", "postgres://"),
	{Kind: ContentGrep, Technologies: list("MySQL"), Match: []Clause{{"mysql://"}, {"Data Source=", "MySql"}}},
	{Kind: ContentGrep, Technologies: list("SQL Server"), Match: []Clause{{"Data Source=", "Initial Catalog="}, {"Server=", "Database="}}},
	grep("Redis", nil, "redis://", "RedisConnectionFactory"),
	{Kind: ContentGrep, Technologies: list("SQLite"), Match: []Clause{{"sqlite://"}, {"Data Source=", ".db"}}},
	grep("Firebase", nil, "firestore", "firebase"),
	grep("DynamoDB", nil, "dynamodb", "DynamoDB"),
	grep("CosmosDB", nil, "cosmosdb", "CosmosDB"),
	census(list(".db", ".sqlite", ".sqlite3"), "SQLite"),

	// Data access libraries.
	grep("Entity Framework", list(".cs"), "DbContext", "Entity Framework"),
	grep("NHibernate", list(".cs"), "NHibernate"),
	grep("Dapper", list(".cs"), "Dapper"),
	grep("Sequelize", jsAndTS, "sequelize"),
	grep("Mongoose", jsAndTS, "mongoose"),
	grep("TypeORM", jsAndTS, "typeorm"),
	grep("Prisma", jsAndTS, "prisma"),
	grep("SQLAlchemy", list(".py"), "sqlalchemy"),
	grep("Django ORM", list(".py"), "django.db"),
	grep("ActiveRecord", list(".rb"), "ActiveRecord"),
	grep("JPA", list(".java"), "javax.persistence", "jakarta.persistence"),
	grep("Hibernate", list(".java"), "org.hibernate"),

	// Containers, CI and infrastructure.
	presence(list("Dockerfile"), "Docker"),
	presence(list("docker-compose.yml", "docker-compose.yaml"), "Docker Compose"),
	presence(list(".github/workflows"), "GitHub Actions"),
	presence(list("azure-pipelines.yml"), "Azure DevOps"),
	presence(list(".gitlab-ci.yml"), "GitLab CI"),
	census(list(".tf", ".tfvars"), "Terraform"),
	{Kind: ContentGrep, Technologies: list("Kubernetes"), Extensions: yamlFiles, Match: []Clause{{"apiVersion:", "kind:"}}},
	presence(list("serverless.yml", "serverless.yaml"), "Serverless Framework"),
	grep("AWS CloudFormation", yamlFiles, "AWSTemplateFormatVersion"),
	{Kind: ContentGrep, Technologies: list("Azure Resource Manager"), Extensions: list(".json"), Match: []Clause{{"$schema", "deploymentTemplate.json"}}},

	// Build tooling.
	presence(list("webpack.config.js"), "Webpack"),
	presence(list("vite.config.js", "vite.config.ts"), "Vite"),
	presence(list("rollup.config.js"), "Rollup"),
	presence(list("gulpfile.js"), "Gulp"),
	presence(list("Gruntfile.js"), "Grunt"),
	presence(list("babel.config.js", ".babelrc"), "Babel"),
	presence(list("tsconfig.json"), "TypeScript"),
	presence(list("jest.config.js"), "Jest"),
	presence(list("cypress.json", "cypress.config.js"), "Cypress"),
	presence(list(".eslintrc.js", ".eslintrc.json", ".eslintrc"), "ESLint"),
	presence(list(".prettierrc", ".prettierrc.js", ".prettierrc.json"), "Prettier"),

	// Cloud and hosting.
	{Kind: ContentGrep, Technologies: list("AWS"), Match: []Clause{{"aws-sdk"}, {"AWS."}, {"amazonaws"}}, NameContains: list("aws")},
	{Kind: ContentGrep, Technologies: list("Azure"), Match: []Clause{{"azure-"}, {"Azure."}, {"windowsazure"}}, NameContains: list("azure")},
	{Kind: ContentGrep, Technologies: list("Google Cloud"), Match: []Clause{{"google-cloud"}, {"gcloud"}, {"firebase"}}, NameContains: list("gcp", "google-cloud")},
	presence(list("vercel.json"), "Vercel"),
	grep("Vercel", nil, "vercel", "now.sh"),
	presence(list("netlify.toml"), "Netlify"),
	grep("Netlify", nil, "netlify"),
	presence(list("Procfile"), "Heroku"),
	grep("Heroku", nil, "heroku"),
	grep("Digital Ocean", nil, "digitalocean"),
}
