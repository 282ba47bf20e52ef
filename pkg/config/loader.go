package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// candidates are tried in order when no configuration file is named.
var candidates = []string{
	DefaultFileName,
	"aurora.config.cue",
	"aurora.config.yaml",
	"aurora.config.yml",
	"aurora.config.star",
}

// Resolve returns the configuration file to load from dir: the first
// existing candidate, or aurora.config.json when none exists.
func Resolve(dir string) string {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(dir, DefaultFileName)
}

// Loader reads run configurations. JSON and CUE files are compiled with CUE;
// YAML files are decoded with yaml.v3; Starlark scripts are executed and
// their globals used. Every format is unified with the #Config schema and
// then validated with struct tags.
type Loader struct {
	ctx       *cue.Context
	schemas   *SchemaRegistry
	starlark  *StarlarkEvaluator
	validator *validator.Validate
}

// NewLoader creates a configuration loader.
func NewLoader() *Loader {
	ctx := cuecontext.New()
	return &Loader{
		ctx:       ctx,
		schemas:   newSchemaRegistry(ctx),
		starlark:  NewStarlarkEvaluator(10 * time.Second),
		validator: validator.New(),
	}
}

// Load reads, validates and resolves the configuration at path. Every
// failure is returned as *Error.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	val, err := l.compile(ctx, path, content)
	if err != nil {
		return nil, err
	}

	unified, err := l.schemas.Unify("#Config", val)
	if err != nil {
		return nil, &Error{Path: path, Errors: convertCUEErrors(err), Err: err}
	}

	cfg := Default()
	if err := unified.Decode(cfg); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("failed to decode configuration: %w", err)}
	}

	if err := l.validate(cfg); err != nil {
		return nil, &Error{Path: path, Errors: err, Err: errors.New("validation failed")}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.Path = abs
	cfg.Dir = filepath.Dir(abs)
	cfg.resolvePaths()
	return cfg, nil
}

// compile turns the file content into a CUE value according to its extension.
func (l *Loader) compile(ctx context.Context, path string, content []byte) (cue.Value, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".cue":
		val := l.ctx.CompileBytes(content, cue.Filename(path))
		if err := val.Err(); err != nil {
			return cue.Value{}, &Error{Path: path, Errors: convertCUEErrors(err), Err: err}
		}
		return val, nil

	case ".yaml", ".yml":
		var data map[string]interface{}
		if err := yaml.Unmarshal(content, &data); err != nil {
			return cue.Value{}, &Error{Path: path, Err: fmt.Errorf("failed to parse YAML: %w", err)}
		}
		return l.encode(path, data)

	case ".star":
		result, err := l.starlark.Evaluate(ctx, path, string(content), nil)
		if err != nil {
			return cue.Value{}, &Error{Path: path, Err: err}
		}
		return l.encode(path, result.Output)

	default:
		return cue.Value{}, &Error{Path: path, Err: fmt.Errorf("unsupported configuration format %q", ext)}
	}
}

func (l *Loader) encode(path string, data map[string]interface{}) (cue.Value, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	val := l.ctx.Encode(data)
	if err := val.Err(); err != nil {
		return cue.Value{}, &Error{Path: path, Err: fmt.Errorf("failed to encode configuration: %w", err)}
	}
	return val, nil
}

// validate runs struct-tag validation and checks values the schema cannot.
func (l *Loader) validate(cfg *Config) []ValidationError {
	var out []ValidationError

	if err := l.validator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				out = append(out, ValidationError{
					Path:    strings.TrimPrefix(fe.Namespace(), "Config."),
					Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
				})
			}
		} else {
			out = append(out, ValidationError{Message: err.Error()})
		}
	}

	if _, err := cfg.Remote.TimeoutDuration(); err != nil {
		out = append(out, ValidationError{Path: "remote.timeout", Message: err.Error()})
	}

	return out
}

// resolvePaths makes relative paths absolute against the config directory.
func (c *Config) resolvePaths() {
	for i, pattern := range c.Files {
		c.Files[i] = c.resolve(pattern)
	}
	if !IsStdout(c.Output) && !IsRemote(c.Output) {
		c.Output = c.resolve(c.Output)
	}
	for i, p := range c.Policies {
		c.Policies[i] = c.resolve(p)
	}
	c.History.Path = c.resolve(c.History.Path)
	c.Metrics.Textfile = c.resolve(c.Metrics.Textfile)
	c.Remote.PrivateKeyPath = c.resolve(c.Remote.PrivateKeyPath)
	c.Remote.KnownHostsPath = c.resolve(c.Remote.KnownHostsPath)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "~") {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// IsStdout reports whether target means standard output.
func IsStdout(target string) bool {
	return target == "" || target == "-"
}

// IsRemote reports whether target is an sftp:// URL.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "sftp://")
}

// convertCUEErrors converts CUE errors to ValidationError slice.
func convertCUEErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	for _, e := range cueerrors.Errors(err) {
		pos := cueerrors.Positions(e)
		var file string
		var line, column int

		if len(pos) > 0 {
			file = pos[0].Filename()
			line = pos[0].Line()
			column = pos[0].Column()
		}

		validationErrors = append(validationErrors, ValidationError{
			File:    file,
			Line:    line,
			Column:  column,
			Path:    strings.Join(e.Path(), "."),
			Message: cueerrors.Details(e, nil),
		})
	}

	return validationErrors
}
