package catalog

import "github.com/environmint/envmint/internal/shell"

// Seed returns the starter catalog written when no usable catalog exists.
func Seed(d shell.Dialect) []Tool {
	if d == shell.PowerShell {
		return []Tool{
			{
				Name:             "Git",
				Version:          "Latest",
				Category:         "Development Tools",
				InstallCommand:   "winget install --id Git.Git -e",
				ValidationScript: `if (Get-Command git -ErrorAction SilentlyContinue) { Write-Host "Git is installed" } else { Write-Error "Git is not installed" }`,
			},
			{
				Name:             "Visual Studio Code",
				Version:          "Latest",
				Category:         "Development Tools",
				InstallCommand:   "winget install --id Microsoft.VisualStudioCode -e",
				ValidationScript: `if (Get-Command code -ErrorAction SilentlyContinue) { Write-Host "VS Code is installed" } else { Write-Error "VS Code is not installed" }`,
			},
			{
				Name:             "Node.js",
				Version:          "Latest",
				Category:         "Runtimes",
				InstallCommand:   "winget install OpenJS.NodeJS",
				ValidationScript: `if (Get-Command node -ErrorAction SilentlyContinue) { Write-Host "Node.js is installed" } else { Write-Error "Node.js is not installed" }`,
			},
		}
	}
	return []Tool{
		{
			Name:             "Git",
			Version:          "Latest",
			Category:         "Development Tools",
			InstallCommand:   "brew install git",
			ValidationScript: `command -v git >/dev/null 2>&1 && echo "Git is installed"`,
		},
		{
			Name:             "Visual Studio Code",
			Version:          "Latest",
			Category:         "Development Tools",
			InstallCommand:   "brew install --cask visual-studio-code",
			ValidationScript: `command -v code >/dev/null 2>&1 && echo "VS Code is installed"`,
		},
		{
			Name:             "Node.js",
			Version:          "Latest",
			Category:         "Runtimes",
			InstallCommand:   "brew install node",
			ValidationScript: `command -v node >/dev/null 2>&1 && echo "Node.js is installed"`,
		},
	}
}
