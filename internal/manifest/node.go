package manifest

import "fmt"

var npmPackages = []dependency{
	{"react", "React"},
	{"react-dom", "React"},
	{"@angular/core", "Angular"},
	{"vue", "Vue.js"},
	{"next", "Next.js"},
	{"nuxt", "Nuxt.js"},
	{"express", "Express.js"},
	{"koa", "Koa.js"},
	{"fastify", "Fastify"},
	{"@nestjs/core", "NestJS"},
	{"nest", "NestJS"},
	{"electron", "Electron"},
	{"svelte", "Svelte"},
	{"tailwindcss", "Tailwind CSS"},
	{"bootstrap", "Bootstrap"},
	{"@mui/material", "Material UI"},
	{"styled-components", "Styled Components"},
	{"@emotion/react", "Emotion"},
	{"emotion", "Emotion"},
	{"redux", "Redux"},
	{"mobx", "MobX"},
	{"recoil", "Recoil"},
	{"zustand", "Zustand"},
	{"jest", "Jest"},
	{"mocha", "Mocha"},
	{"cypress", "Cypress"},
	{"playwright", "Playwright"},
	{"@playwright/test", "Playwright"},
	{"storybook", "Storybook"},
	{"webpack", "Webpack"},
	{"vite", "Vite"},
	{"parcel", "Parcel"},
	{"esbuild", "esbuild"},
	{"typescript", "TypeScript"},
	{"prisma", "Prisma"},
	{"@prisma/client", "Prisma"},
	{"sequelize", "Sequelize"},
	{"typeorm", "TypeORM"},
	{"mongoose", "Mongoose"},
}

type packageJSON struct {
	Engines         map[string]interface{} `json:"engines"`
	Dependencies    map[string]interface{} `json:"dependencies"`
	DevDependencies map[string]interface{} `json:"devDependencies"`
}

// ParsePackageJSON reads dependencies and devDependencies through the npm
// table and engines.node as the Node.js version. devDependencies win when
// a package appears in both.
func ParsePackageJSON(path string, data []byte) (*Findings, error) {
	pkg, err := parseTyped[packageJSON](data, path)
	if err != nil {
		return nil, err
	}

	f := NewFindings()
	if v, ok := pkg.Engines["node"].(string); ok {
		f.Version("Node.js", v)
	}

	deps := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for _, m := range []map[string]interface{}{pkg.Dependencies, pkg.DevDependencies} {
		for name, v := range m {
			deps[name] = versionString(v)
		}
	}
	for _, d := range npmPackages {
		if v, ok := deps[d.Package]; ok {
			f.Version(d.Technology, v)
		}
	}
	return f, nil
}

type composerJSON struct {
	Require map[string]interface{} `json:"require"`
}

var composerPackages = []dependency{
	{"laravel/framework", "Laravel"},
	{"symfony/symfony", "Symfony"},
	{"symfony/framework-bundle", "Symfony"},
}

// ParseComposerJSON reads require.php as the PHP version and flags the
// Laravel and Symfony frameworks.
func ParseComposerJSON(path string, data []byte) (*Findings, error) {
	c, err := parseTyped[composerJSON](data, path)
	if err != nil {
		return nil, err
	}

	f := NewFindings()
	if v, ok := c.Require["php"]; ok {
		f.Version("PHP", versionString(v))
	}
	for _, d := range composerPackages {
		if v, ok := c.Require[d.Package]; ok {
			f.Version(d.Technology, versionString(v))
		}
	}
	return f, nil
}

// versionString renders a JSON dependency value. Non-string values such
// as git or path specs carry no version.
func versionString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	if m, ok := v.(map[string]interface{}); ok {
		if s, ok := m["version"].(string); ok {
			return s
		}
		return ""
	}
	return fmt.Sprint(v)
}
