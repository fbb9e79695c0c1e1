package shell

import (
	"reflect"
	"testing"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"PowerShell", PowerShell, false},
		{"powershell", PowerShell, false},
		{"pwsh", PowerShell, false},
		{"Bash", Bash, false},
		{" sh ", Bash, false},
		{"posix", Bash, false},
		{"fish", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDialect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestInterpreterFor(t *testing.T) {
	tests := []struct {
		name     string
		d        Dialect
		goos     string
		wantBin  string
		wantArgs []string
	}{
		{"powershell on windows", PowerShell, "windows", "powershell.exe", []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-Command"}},
		{"powershell elsewhere", PowerShell, "linux", "pwsh", []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-Command"}},
		{"bash", Bash, "darwin", "sh", []string{"-c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin, args := tt.d.interpreterFor(tt.goos)
			if bin != tt.wantBin {
				t.Errorf("bin = %q, want %q", bin, tt.wantBin)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	if got := PowerShell.Extension(); got != ".ps1" {
		t.Errorf("PowerShell.Extension() = %q, want .ps1", got)
	}
	if got := Bash.Extension(); got != ".sh" {
		t.Errorf("Bash.Extension() = %q, want .sh", got)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		d    Dialect
		want string
	}{
		{"powershell plain", "Git", PowerShell, "'Git'"},
		{"powershell apostrophe", "Bob's Tool", PowerShell, "'Bob''s Tool'"},
		{"bash plain", "Git", Bash, "Git"},
		{"bash spaces", "Visual Studio Code", Bash, "'Visual Studio Code'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quote(tt.in, tt.d)
			if err != nil {
				t.Fatalf("Quote error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Quote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckSyntax(t *testing.T) {
	if err := CheckSyntax(`command -v git >/dev/null 2>&1 && echo "Git is installed"`, Bash); err != nil {
		t.Errorf("valid script rejected: %v", err)
	}
	if err := CheckSyntax(`if true; then echo`, Bash); err == nil {
		t.Error("expected error for unterminated if")
	}
	if err := CheckSyntax(`if (Get-Command git) {`, PowerShell); err != nil {
		t.Errorf("PowerShell scripts are not checked, got %v", err)
	}
}

func TestCheckSyntax_EmptyGroup(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{"comment only brace group", "if out=$({\n# installed manually\n} 2>/dev/null); then echo ok; fi", true},
		{"empty subshell", "( )", true},
		{"brace group with command", "{\ncommand -v git\n}", false},
		{"comment only script", "# nothing to run", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSyntax(tt.script, Bash)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckSyntax(%q) error = %v, wantErr %v", tt.script, err, tt.wantErr)
			}
		})
	}
}

func TestHasCommands(t *testing.T) {
	tests := []struct {
		name   string
		script string
		d      Dialect
		want   bool
	}{
		{"bash command", "command -v git", Bash, true},
		{"bash comment", "# Visual Studio for Mac must be installed manually on a Mac", Bash, false},
		{"bash blank lines", "\n\n   \n", Bash, false},
		{"bash comment then command", "# check\nwhich go", Bash, true},
		{"bash parse error", "if true; then", Bash, true},
		{"powershell command", "Get-Command git", PowerShell, true},
		{"powershell comment", "# install manually", PowerShell, false},
		{"powershell block comment", "<#\nnot here\n#>", PowerShell, false},
		{"powershell inline block comment", "<# note #> Get-Command dotnet", PowerShell, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCommands(tt.script, tt.d); got != tt.want {
				t.Errorf("HasCommands(%q, %s) = %v, want %v", tt.script, tt.d, got, tt.want)
			}
		})
	}
}
