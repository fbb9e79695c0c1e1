package recommend

import (
	"fmt"

	"github.com/environmint/envmint/internal/catalog"
	"github.com/environmint/envmint/internal/shell"
)

// Defaults applied to tools synthesized from a ToolSpec.
const (
	SynthesizedVersion  = "Latest"
	SynthesizedCategory = "Development Tools"
)

// ToolSpec holds the install and validation commands for a tool that is
// not in the catalog. A dialect without an entry gets an empty command.
type ToolSpec struct {
	Name     string
	Install  map[shell.Dialect]string
	Validate map[shell.Dialect]string
	// Tracks names the technology whose detected version this tool
	// provides, used for version mismatch warnings.
	Tracks string
}

// Tool synthesizes a catalog record for dialect d.
func (s ToolSpec) Tool(d shell.Dialect) catalog.Tool {
	return catalog.Tool{
		Name:             s.Name,
		Version:          SynthesizedVersion,
		Category:         SynthesizedCategory,
		InstallCommand:   s.Install[d],
		ValidationScript: s.Validate[d],
	}
}

func getCommand(name, command string) string {
	return fmt.Sprintf(`if (Get-Command %s -ErrorAction SilentlyContinue) { Write-Host "%s is installed" } else { Write-Error "%s is not installed" }`, command, name, name)
}

func testPath(name, path string) string {
	return fmt.Sprintf(`if (Test-Path "${env:ProgramFiles}\%s") { Write-Host "%s is installed" } else { Write-Error "%s is not installed" }`, path, name, name)
}

func commandV(name, command string) string {
	return fmt.Sprintf(`command -v %s >/dev/null 2>&1 && echo "%s is installed"`, command, name)
}

func testDir(name, dir string) string {
	return fmt.Sprintf(`test -d "%s" && echo "%s is installed"`, dir, name)
}

// cli is a tool that puts command on PATH, installed with winget or brew.
func cli(name, command, wingetID, brew string) ToolSpec {
	return ToolSpec{
		Name: name,
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install " + wingetID,
			shell.Bash:       "brew install " + brew,
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand(name, command),
			shell.Bash:       commandV(name, command),
		},
	}
}

func tracks(s ToolSpec, tech string) ToolSpec {
	s.Tracks = tech
	return s
}

// DefaultTools are the tools DefaultTable can recommend, keyed by name.
var DefaultTools = indexTools(
	tracks(cli("Node.js", "node", "OpenJS.NodeJS", "node"), "Node.js"),
	ToolSpec{
		Name: "npm",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install OpenJS.NodeJS",
			shell.Bash:       "brew install node",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("npm", "npm"),
			shell.Bash:       commandV("npm", "npm"),
		},
	},
	ToolSpec{
		Name: "Yarn",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "npm install -g yarn",
			shell.Bash:       "npm install -g yarn",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("Yarn", "yarn"),
			shell.Bash:       commandV("Yarn", "yarn"),
		},
	},
	ToolSpec{
		Name: "pnpm",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "npm install -g pnpm",
			shell.Bash:       "npm install -g pnpm",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("pnpm", "pnpm"),
			shell.Bash:       commandV("pnpm", "pnpm"),
		},
	},
	ToolSpec{
		Name: "TypeScript",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "npm install -g typescript",
			shell.Bash:       "npm install -g typescript",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("TypeScript", "tsc"),
			shell.Bash:       commandV("TypeScript", "tsc"),
		},
		Tracks: "TypeScript",
	},
	ToolSpec{
		Name: "Visual Studio Code",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Microsoft.VisualStudioCode",
			shell.Bash:       "brew install --cask visual-studio-code",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("Visual Studio Code", "code"),
			shell.Bash:       commandV("Visual Studio Code", "code"),
		},
	},
	tracks(cli("Python", "python", "Python.Python", "python"), "Python"),
	ToolSpec{
		Name: "pip",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "python -m ensurepip --upgrade",
			shell.Bash:       "python3 -m ensurepip --upgrade",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("pip", "pip"),
			shell.Bash:       commandV("pip", "pip3"),
		},
	},
	ToolSpec{
		Name: "Poetry",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "pip install poetry",
			shell.Bash:       "brew install poetry",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("Poetry", "poetry"),
			shell.Bash:       commandV("Poetry", "poetry"),
		},
	},
	ToolSpec{
		Name: ".NET SDK",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Microsoft.DotNet.SDK.7",
			shell.Bash:       "brew install --cask dotnet-sdk",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand(".NET SDK", "dotnet"),
			shell.Bash:       commandV(".NET SDK", "dotnet"),
		},
		Tracks: ".NET",
	},
	ToolSpec{
		Name: "Visual Studio",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Microsoft.VisualStudio.2022.Community",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: testPath("Visual Studio", `Microsoft Visual Studio\2022\Community\Common7\IDE\devenv.exe`),
		},
	},
	tracks(ToolSpec{
		Name: "JDK",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Oracle.JDK.17",
			shell.Bash:       "brew install openjdk@17",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("JDK", "java"),
			shell.Bash:       commandV("JDK", "java"),
		},
	}, "Java"),
	cli("Maven", "mvn", "Apache.Maven", "maven"),
	cli("Gradle", "gradle", "Gradle.Gradle", "gradle"),
	ToolSpec{
		Name: "IntelliJ IDEA",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install JetBrains.IntelliJIDEA.Community",
			shell.Bash:       "brew install --cask intellij-idea-ce",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: testPath("IntelliJ IDEA", `JetBrains\IntelliJ IDEA Community Edition*`),
			shell.Bash:       testDir("IntelliJ IDEA", "/Applications/IntelliJ IDEA CE.app"),
		},
	},
	ToolSpec{
		Name: "Docker Desktop",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Docker.DockerDesktop",
			shell.Bash:       "brew install --cask docker",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("Docker Desktop", "docker"),
			shell.Bash:       commandV("Docker Desktop", "docker"),
		},
	},
	cli("kubectl", "kubectl", "Kubernetes.kubectl", "kubectl"),
	tracks(cli("PostgreSQL", "psql", "PostgreSQL.PostgreSQL", "postgresql@16"), "PostgreSQL"),
	tracks(cli("MySQL", "mysql", "Oracle.MySQL", "mysql"), "MySQL"),
	ToolSpec{
		Name: "MongoDB",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install MongoDB.Server",
			shell.Bash:       "brew tap mongodb/brew && brew install mongodb-community",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("MongoDB", "mongod"),
			shell.Bash:       commandV("MongoDB", "mongod"),
		},
	},
	cli("SQLite", "sqlite3", "SQLite.SQLite", "sqlite"),
	ToolSpec{
		Name: "SQL Server Express",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Microsoft.SQLServerExpress",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: testPath("SQL Server Express", `Microsoft SQL Server`),
		},
	},
	ToolSpec{
		Name: "SQL Server Management Studio",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Microsoft.SQLServerManagementStudio",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: testPath("SQL Server Management Studio", `Microsoft SQL Server Management Studio 19`),
		},
	},
	cli("Git", "git", "Git.Git", "git"),
	tracks(cli("Go", "go", "GoLang.Go", "go"), "Go"),
	tracks(cli("Rust", "rustc", "Rustlang.Rust", "rust"), "Rust"),
	tracks(cli("Ruby", "ruby", "RubyInstallerTeam.Ruby", "ruby"), "Ruby"),
	tracks(cli("PHP", "php", "PHP.PHP", "php"), "PHP"),
	cli("Composer", "composer", "Composer.Composer", "composer"),
	ToolSpec{
		Name: "Flutter SDK",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Google.Flutter",
			shell.Bash:       "brew install --cask flutter",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("Flutter SDK", "flutter"),
			shell.Bash:       commandV("Flutter SDK", "flutter"),
		},
	},
	ToolSpec{
		Name: "Android Studio",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Google.AndroidStudio",
			shell.Bash:       "brew install --cask android-studio",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: testPath("Android Studio", `Android\Android Studio`),
			shell.Bash:       testDir("Android Studio", "/Applications/Android Studio.app"),
		},
	},
	ToolSpec{
		Name: "Xcode",
		Install: map[shell.Dialect]string{
			shell.Bash: "xcode-select --install",
		},
		Validate: map[shell.Dialect]string{
			shell.Bash: `xcode-select -p >/dev/null 2>&1 && echo "Xcode is installed"`,
		},
	},
	ToolSpec{
		Name: "AWS CLI",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Amazon.AWSCLI",
			shell.Bash:       "brew install awscli",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("AWS CLI", "aws"),
			shell.Bash:       commandV("AWS CLI", "aws"),
		},
	},
	ToolSpec{
		Name: "Azure CLI",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Microsoft.AzureCLI",
			shell.Bash:       "brew install azure-cli",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("Azure CLI", "az"),
			shell.Bash:       commandV("Azure CLI", "az"),
		},
	},
	ToolSpec{
		Name: "Google Cloud SDK",
		Install: map[shell.Dialect]string{
			shell.PowerShell: "winget install Google.CloudSDK",
			shell.Bash:       "brew install --cask google-cloud-sdk",
		},
		Validate: map[shell.Dialect]string{
			shell.PowerShell: getCommand("Google Cloud SDK", "gcloud"),
			shell.Bash:       commandV("Google Cloud SDK", "gcloud"),
		},
	},
	cli("Terraform", "terraform", "Hashicorp.Terraform", "terraform"),
)

func indexTools(specs ...ToolSpec) map[string]ToolSpec {
	m := make(map[string]ToolSpec, len(specs))
	for _, s := range specs {
		m[s.Name] = s
	}
	return m
}
