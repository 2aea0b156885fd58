package hookinject

import (
	"os"
	"os/exec"
	"strings"
)

// Stdio selects how a launched program's standard streams are wired.
// The numeric values are part of the native call contract.
type Stdio int

const (
	StdioInherit Stdio = 0
	StdioNull    Stdio = 1
	StdioPipe    Stdio = 2
)

func (s Stdio) String() string {
	switch s {
	case StdioInherit:
		return "inherit"
	case StdioNull:
		return "null"
	case StdioPipe:
		return "pipe"
	default:
		return "unknown"
	}
}

// ParseStdio parses "inherit", "null" or "pipe".
func ParseStdio(s string) (Stdio, bool) {
	switch strings.ToLower(s) {
	case "", "inherit":
		return StdioInherit, true
	case "null":
		return StdioNull, true
	case "pipe":
		return StdioPipe, true
	}
	return StdioInherit, false
}

// EnvVar is a single environment override.
type EnvVar struct {
	Key   string
	Value string
}

// Program describes a program to launch: executable, arguments, environment
// overrides, working directory and stdio mode.
//
// Setters mutate the receiver and return it for chaining. A Program is not
// safe for concurrent mutation.
type Program struct {
	path  string
	args  []string
	env   []EnvVar
	dir   string
	stdio Stdio
}

// NewProgram creates a launch description for the executable at path.
func NewProgram(path string) *Program {
	return &Program{path: path}
}

// ProgramFromCmd captures Path, Args, Env and Dir from cmd.
//
// Only those fields are honored by the injection path. SysProcAttr,
// ExtraFiles, Stdin/Stdout/Stderr, Cancel and WaitDelay are ignored, and
// stdio defaults to StdioInherit; call SetStdio to change it. cmd.Args[0]
// is treated as the program name and dropped because the launch argv always
// starts with the program path.
func ProgramFromCmd(cmd *exec.Cmd) *Program {
	p := NewProgram(cmd.Path)
	if len(cmd.Args) > 1 {
		p.Args(cmd.Args[1:]...)
	}
	for _, kv := range cmd.Env {
		k, v, _ := strings.Cut(kv, "=")
		p.Env(k, v)
	}
	p.dir = cmd.Dir
	return p
}

// Arg appends one argument.
func (p *Program) Arg(arg string) *Program {
	p.args = append(p.args, arg)
	return p
}

// Args appends arguments in order.
func (p *Program) Args(args ...string) *Program {
	p.args = append(p.args, args...)
	return p
}

// Env sets an environment override. A later value for the same key replaces
// the earlier one in place, keeping the original position.
func (p *Program) Env(key, value string) *Program {
	for i := range p.env {
		if p.env[i].Key == key {
			p.env[i].Value = value
			return p
		}
	}
	p.env = append(p.env, EnvVar{Key: key, Value: value})
	return p
}

// Envs applies overrides from a KEY=VALUE list in order.
func (p *Program) Envs(kvs ...string) *Program {
	for _, kv := range kvs {
		k, v, _ := strings.Cut(kv, "=")
		p.Env(k, v)
	}
	return p
}

// Dir sets the working directory. Empty means inherit.
func (p *Program) Dir(dir string) *Program {
	p.dir = dir
	return p
}

// SetStdio sets the stdio mode.
func (p *Program) SetStdio(s Stdio) *Program {
	p.stdio = s
	return p
}

// Accessors return copies; mutating the result does not change p.

func (p *Program) Path() string          { return p.path }
func (p *Program) Arguments() []string   { return append([]string(nil), p.args...) }
func (p *Program) Environment() []EnvVar { return append([]EnvVar(nil), p.env...) }
func (p *Program) WorkingDir() string    { return p.dir }
func (p *Program) StdioMode() Stdio      { return p.stdio }

// Argv returns the launch argv: program path followed by the arguments.
func (p *Program) Argv() []string {
	argv := make([]string, 0, len(p.args)+1)
	argv = append(argv, p.path)
	return append(argv, p.args...)
}

// Envp returns the overrides rendered as KEY=VALUE.
func (p *Program) Envp() []string {
	if len(p.env) == 0 {
		return nil
	}
	envp := make([]string, len(p.env))
	for i, e := range p.env {
		envp[i] = e.Key + "=" + e.Value
	}
	return envp
}

// Cmd builds an *exec.Cmd for the same launch. Environment overrides are
// applied on top of the current process environment. StdioInherit wires the
// parent's streams, StdioNull leaves them nil (the null device), and
// StdioPipe leaves them for the caller to take with StdinPipe/StdoutPipe.
func (p *Program) Cmd() *exec.Cmd {
	cmd := exec.Command(p.path, p.args...)
	cmd.Dir = p.dir
	if len(p.env) > 0 {
		cmd.Env = append(os.Environ(), p.Envp()...)
	}
	if p.stdio == StdioInherit {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	return cmd
}
