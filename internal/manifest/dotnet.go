package manifest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type msbuildProject struct {
	SDK            string `xml:"Sdk,attr"`
	PropertyGroups []struct {
		TargetFramework        string `xml:"TargetFramework"`
		TargetFrameworks       string `xml:"TargetFrameworks"`
		TargetFrameworkVersion string `xml:"TargetFrameworkVersion"`
		UseWPF                 string `xml:"UseWPF"`
		UseWindowsForms        string `xml:"UseWindowsForms"`
		UseMaui                string `xml:"UseMaui"`
	} `xml:"PropertyGroup"`
	ItemGroups []struct {
		PackageReferences []struct {
			Include string `xml:"Include,attr"`
			Version string `xml:"Version,attr"`
		} `xml:"PackageReference"`
		References []struct {
			Include string `xml:"Include,attr"`
		} `xml:"Reference"`
	} `xml:"ItemGroup"`
}

var (
	tfmModern   = regexp.MustCompile(`^net(\d+)\.(\d+)`)
	tfmCore     = regexp.MustCompile(`^netcoreapp(\d+\.\d+)`)
	tfmStandard = regexp.MustCompile(`^netstandard(\d+\.\d+)`)
	tfmLegacy   = regexp.MustCompile(`^net(4)(\d)(\d?)$`)
)

// package reference prefixes, checked in order.
var nugetPackages = []dependency{
	{"Microsoft.AspNetCore.Mvc.Razor.RuntimeCompilation", "ASP.NET MVC"},
	{"Microsoft.AspNetCore.SignalR", "SignalR"},
	{"Microsoft.AspNetCore.Components.WebAssembly", "Blazor"},
	{"Microsoft.AspNetCore.Components.Web", "Blazor"},
	{"Microsoft.AspNetCore", "ASP.NET"},
	{"Microsoft.AspNet.Mvc", "ASP.NET"},
	{"Microsoft.EntityFrameworkCore", "Entity Framework Core"},
	{"Microsoft.Maui", "Xamarin/MAUI"},
	{"Xamarin", "Xamarin/MAUI"},
}

// ParseMSBuild reads an SDK-style or legacy .csproj/.fsproj/.vbproj file:
// target framework family and version, web and desktop frameworks, and
// Entity Framework Core.
func ParseMSBuild(path string, data []byte) (*Findings, error) {
	var p msbuildProject
	if err := xml.NewDecoder(bytes.NewReader(stripBOM(data))).Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	f := NewFindings()
	f.Flag(".NET")

	switch {
	case strings.HasPrefix(p.SDK, "Microsoft.NET.Sdk.BlazorWebAssembly"):
		f.Flag("Blazor")
		f.Flag("ASP.NET")
	case strings.HasPrefix(p.SDK, "Microsoft.NET.Sdk.Web"):
		f.Flag("ASP.NET")
	}

	for _, pg := range p.PropertyGroups {
		var monikers []string
		if pg.TargetFramework != "" {
			monikers = append(monikers, pg.TargetFramework)
		}
		monikers = append(monikers, strings.Split(pg.TargetFrameworks, ";")...)
		for _, tfm := range monikers {
			applyTargetFramework(f, strings.TrimSpace(tfm))
		}

		if v := strings.TrimSpace(pg.TargetFrameworkVersion); v != "" {
			f.Version(".NET Framework", strings.TrimPrefix(v, "v"))
		}
		if isTrue(pg.UseWPF) {
			f.Flag("WPF")
		}
		if isTrue(pg.UseWindowsForms) {
			f.Flag("Windows Forms")
		}
		if isTrue(pg.UseMaui) {
			f.Flag("Xamarin/MAUI")
		}
	}

	for _, ig := range p.ItemGroups {
		for _, ref := range ig.PackageReferences {
			for _, d := range nugetPackages {
				if strings.HasPrefix(ref.Include, d.Package) {
					f.Version(d.Technology, ref.Version)
					if strings.HasPrefix(d.Package, "Microsoft.AspNetCore") {
						f.Flag("ASP.NET")
					}
					break
				}
			}
		}
		for _, ref := range ig.References {
			name, _, _ := strings.Cut(ref.Include, ",")
			switch strings.TrimSpace(name) {
			case "PresentationFramework":
				f.Flag("WPF")
			case "System.Windows.Forms":
				f.Flag("Windows Forms")
			}
		}
	}
	return f, nil
}

// applyTargetFramework interprets one target framework moniker such as
// net8.0-windows, netcoreapp3.1, netstandard2.0 or net472.
func applyTargetFramework(f *Findings, tfm string) {
	if tfm == "" {
		return
	}
	if m := tfmCore.FindStringSubmatch(tfm); m != nil {
		f.Version(".NET Core", m[1])
		return
	}
	if m := tfmStandard.FindStringSubmatch(tfm); m != nil {
		f.Version(".NET Standard", m[1])
		return
	}
	if m := tfmLegacy.FindStringSubmatch(tfm); m != nil {
		v := m[1] + "." + m[2]
		if m[3] != "" {
			v += "." + m[3]
		}
		f.Version(".NET Framework", v)
		return
	}
	if m := tfmModern.FindStringSubmatch(tfm); m != nil {
		if major, _ := strconv.Atoi(m[1]); major >= 5 {
			f.Flag(".NET Core/.NET 5+")
			f.Version(".NET", m[1]+"."+m[2])
		}
	}
}

func isTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
