package preflight

import (
	"io"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInterpreter = "python3"
	DefaultInstaller   = "pip3"
	DefaultBundle      = "/Applications/Google Chrome.app"
)

// Library is a third party Python library. Module is the name given to the
// import statement, Package the name given to the package manager.
type Library struct {
	Module  string `yaml:"module"`
	Package string `yaml:"package"`
}

func (i Library) String() string {
	return i.Package
}

func (i Library) normalize() Library {
	if i.Package == "" {
		i.Package = i.Module
	}
	if i.Module == "" {
		i.Module = i.Package
	}
	return i
}

type Requirements struct {
	Interpreter string    `yaml:"interpreter"`
	Installer   string    `yaml:"installer"`
	Script      string    `yaml:"script"`
	Args        []string  `yaml:"args"`
	Assets      []string  `yaml:"assets"`
	Libraries   []Library `yaml:"libraries"`
	Bundle      string    `yaml:"bundle"`
}

var browserLibraries = []Library{
	{
		Module:  "undetected_chromedriver",
		Package: "undetected-chromedriver",
	},
	{
		Module:  "selenium",
		Package: "selenium",
	},
}

var presets = map[string]Requirements{
	"twitter": {
		Script: "twitter_selenium_test.py",
	},
	"grok": {
		Script: "grok_video_automation.py",
		Assets: []string{"test_input.jpg"},
	},
}

const DefaultPreset = "twitter"

func Presets() []string {
	var list []string
	for k := range presets {
		list = append(list, k)
	}
	sort.Strings(list)
	return list
}

func Preset(name string) (Requirements, error) {
	p, ok := presets[name]
	if !ok {
		return Requirements{}, errors.Errorf("%s: unknown preset", name)
	}
	req := DefaultRequirements()
	req.Script = p.Script
	req.Assets = slices.Clone(p.Assets)
	return req, nil
}

func DefaultRequirements() Requirements {
	return Requirements{
		Interpreter: DefaultInterpreter,
		Installer:   DefaultInstaller,
		Script:      presets[DefaultPreset].Script,
		Libraries:   slices.Clone(browserLibraries),
		Bundle:      DefaultBundle,
	}
}

// LoadRequirements decodes a YAML document from r. Fields missing from the
// document keep the value they have in base.
func LoadRequirements(r io.Reader, base Requirements) (Requirements, error) {
	req := base
	req.Args = nil
	req.Assets = nil
	req.Libraries = nil
	if err := yaml.NewDecoder(r).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return base, errors.Wrap(err, "decode requirements")
	}
	if req.Args == nil {
		req.Args = slices.Clone(base.Args)
	}
	if req.Assets == nil {
		req.Assets = slices.Clone(base.Assets)
	}
	if req.Libraries == nil {
		req.Libraries = slices.Clone(base.Libraries)
	}
	for i := range req.Libraries {
		if req.Libraries[i].Module == "" && req.Libraries[i].Package == "" {
			return base, errors.Errorf("library #%d: module or package required", i+1)
		}
	}
	return req, nil
}

// Expand substitutes the variables of env in every path and argument.
func (r Requirements) Expand(env Environment) Requirements {
	x := r
	x.Interpreter = Expand(r.Interpreter, env)
	x.Installer = Expand(r.Installer, env)
	x.Script = Expand(r.Script, env)
	x.Bundle = Expand(r.Bundle, env)
	x.Args = expandAll(r.Args, env)
	x.Assets = expandAll(r.Assets, env)
	x.Libraries = make([]Library, 0, len(r.Libraries))
	for _, i := range r.Libraries {
		x.Libraries = append(x.Libraries, i.normalize())
	}
	return x
}

func expandAll(list []string, env Environment) []string {
	if list == nil {
		return nil
	}
	res := make([]string, len(list))
	for i := range list {
		res[i] = Expand(list[i], env)
	}
	return res
}
