package preflight

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

const platformVar = "OSTYPE"

var ErrDefined = errors.New("variable not defined")

type Environment interface {
	Define(string, []string) error
	Resolve(string) ([]string, error)
}

type Env struct {
	parent Environment
	values map[string][]string
}

func EmptyEnv() Environment {
	return EnclosedEnv(nil)
}

func EnclosedEnv(parent Environment) Environment {
	return &Env{
		parent: parent,
		values: make(map[string][]string),
	}
}

// ProcessEnv returns a snapshot of the environment of the running process.
func ProcessEnv() Environment {
	env := EmptyEnv()
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env.Define(k, strArray(v))
	}
	return env
}

func (e *Env) Resolve(ident string) ([]string, error) {
	vs, ok := e.values[ident]
	if ok {
		return slices.Clone(vs), nil
	}
	if e.parent == nil {
		return nil, undefined(ident)
	}
	return e.parent.Resolve(ident)
}

func (e *Env) Define(ident string, values []string) error {
	e.values[ident] = slices.Clone(values)
	return nil
}

// List returns the variables as KEY=VALUE pairs sorted by key. Variables
// defined in e shadow the ones of its parents.
func (e *Env) List() []string {
	seen := make(map[string]string)
	if i, ok := e.parent.(interface{ List() []string }); ok {
		for _, kv := range i.List() {
			k, v, _ := strings.Cut(kv, "=")
			seen[k] = v
		}
	}
	for k, vs := range e.values {
		seen[k] = strings.Join(vs, " ")
	}
	list := make([]string, 0, len(seen))
	for k, v := range seen {
		list = append(list, fmt.Sprintf("%s=%s", k, v))
	}
	slices.Sort(list)
	return list
}

// Lookup returns the value of ident in env or the empty string if ident is
// not defined.
func Lookup(env Environment, ident string) string {
	vs, err := env.Resolve(ident)
	if err != nil {
		return ""
	}
	return strings.Join(vs, " ")
}

// Expand replaces ${var} and $var in str by their values in env.
func Expand(str string, env Environment) string {
	return os.Expand(str, func(ident string) string {
		return Lookup(env, ident)
	})
}

// Platform identifies the host family. OSTYPE is a shell variable that is
// seldom exported so the value reported by the runtime is used when it is
// missing.
func Platform(env Environment) string {
	if str := Lookup(env, platformVar); str != "" {
		return str
	}
	return runtime.GOOS
}

func IsDarwin(platform string) bool {
	return strings.HasPrefix(platform, "darwin")
}

func environList(env Environment) []string {
	if i, ok := env.(interface{ List() []string }); ok {
		return i.List()
	}
	return nil
}

func undefined(ident string) error {
	return errors.WithMessage(ErrDefined, ident)
}

func strArray(str string) []string {
	return []string{str}
}
