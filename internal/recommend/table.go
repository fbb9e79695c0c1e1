package recommend

// Entry recommends one tool under a category.
type Entry struct {
	Category string
	Tool     string
	// When names a technology that must also be detected.
	When string
}

// Table maps a detected technology to the tools it calls for. Keys match
// scanner technology names exactly.
type Table map[string][]Entry

// General groups the baseline tools when no other category carries them.
const General = "General Development Tools"

// Baseline tools are recommended for every project.
var Baseline = []string{"Git", "Visual Studio Code"}

// DefaultTable is the built-in technology to tool mapping.
var DefaultTable = buildDefaultTable()

func buildDefaultTable() Table {
	t := Table{}
	add := func(techs []string, category string, tools ...string) {
		for _, tech := range techs {
			cat := category
			if cat == "" {
				cat = tech + " Development"
			}
			for _, tool := range tools {
				t[tech] = append(t[tech], Entry{Category: cat, Tool: tool})
			}
		}
	}
	techs := func(s ...string) []string { return s }

	add(techs("Node.js"), "Node.js Development", "Node.js", "npm")
	add(techs("Yarn"), "Node.js Development", "Node.js", "Yarn")
	add(techs("pnpm"), "Node.js Development", "Node.js", "pnpm")
	add(techs("React", "Angular", "Vue.js", "Next.js", "Nuxt.js", "Svelte"), "", "Node.js", "Visual Studio Code")
	add(techs("TypeScript"), "TypeScript Development", "Node.js", "TypeScript")

	add(techs("Python"), "Python Development", "Python", "pip")
	add(techs("Poetry"), "Python Development", "Python", "Poetry")
	add(techs("Django", "Flask", "FastAPI"), "", "Python", "Visual Studio Code")

	add(techs(".NET", ".NET Core/.NET 5+"), ".NET Development", ".NET SDK")
	add(techs("C#"), "C# Development", ".NET SDK", "Visual Studio")
	add(techs("ASP.NET", "Blazor"), "", ".NET SDK", "Visual Studio")
	add(techs("WPF"), "WPF Development", ".NET SDK", "Visual Studio")
	add(techs("Windows Forms"), "Windows Forms Development", ".NET SDK", "Visual Studio")
	add(techs("Visual Studio"), "Development Environment", "Visual Studio")

	add(techs("Java"), "Java Development", "JDK")
	t["Java"] = append(t["Java"],
		Entry{Category: "Java Development", Tool: "Maven", When: "Maven"},
		Entry{Category: "Java Development", Tool: "Gradle", When: "Gradle"},
	)
	add(techs("Spring Boot"), "Spring Boot Development", "JDK", "IntelliJ IDEA")
	add(techs("Android"), "Android Development", "Android Studio", "JDK")

	add(techs("Docker", "Docker Compose"), "Containerization", "Docker Desktop")
	add(techs("Kubernetes"), "Containerization", "Docker Desktop", "kubectl")

	for _, db := range []string{"PostgreSQL", "MySQL", "MongoDB", "SQLite"} {
		add(techs(db), "Database", db)
	}
	add(techs("SQL Server"), "Database", "SQL Server Express", "SQL Server Management Studio")

	add(techs("Git"), "Version Control", "Git")
	add(techs("Go"), "Go Development", "Go")
	add(techs("Rust"), "Rust Development", "Rust")
	add(techs("Ruby", "Ruby on Rails"), "Ruby Development", "Ruby")
	add(techs("PHP", "Laravel", "Symfony"), "PHP Development", "PHP", "Composer")
	add(techs("Flutter", "Dart"), "Flutter Development", "Flutter SDK", "Android Studio")
	add(techs("iOS", "Swift"), "iOS Development", "Xcode")

	add(techs("AWS"), "AWS Development", "AWS CLI")
	add(techs("Azure"), "Azure Development", "Azure CLI")
	add(techs("Google Cloud"), "Google Cloud Development", "Google Cloud SDK")
	add(techs("Terraform"), "Infrastructure as Code", "Terraform")
	return t
}
