package config

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// SchemaRegistry manages CUE definitions used to validate configuration.
type SchemaRegistry struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
	mu      sync.RWMutex
}

// NewSchemaRegistry creates a new schema registry with built-in schemas.
func NewSchemaRegistry() *SchemaRegistry {
	return newSchemaRegistry(cuecontext.New())
}

func newSchemaRegistry(ctx *cue.Context) *SchemaRegistry {
	sr := &SchemaRegistry{
		ctx:     ctx,
		schemas: make(map[string]cue.Value),
	}

	if err := sr.RegisterSchema("#Config", builtinConfigSchema); err != nil {
		panic(fmt.Sprintf("built-in config schema does not compile: %v", err))
	}

	return sr
}

// RegisterSchema compiles source and registers the definition called name
// (for example "#Config") that it declares.
func (sr *SchemaRegistry) RegisterSchema(name, source string) error {
	val := sr.ctx.CompileString(source, cue.Filename(name+".cue"))
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	def := val.LookupPath(cue.ParsePath(name))
	if !def.Exists() {
		return fmt.Errorf("schema source does not declare %s", name)
	}

	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.schemas[name] = def
	return nil
}

// GetSchema retrieves a schema by name.
func (sr *SchemaRegistry) GetSchema(name string) (cue.Value, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	val, ok := sr.schemas[name]
	return val, ok
}

// Unify unifies val with the named schema and requires a concrete result.
func (sr *SchemaRegistry) Unify(name string, val cue.Value) (cue.Value, error) {
	schema, ok := sr.GetSchema(name)
	if !ok {
		return cue.Value{}, fmt.Errorf("schema %s not found", name)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, err
	}
	return unified, nil
}

// ValidateAgainstSchema validates Go data against a named schema.
func (sr *SchemaRegistry) ValidateAgainstSchema(name string, data interface{}) error {
	dataVal := sr.ctx.Encode(data)
	if err := dataVal.Err(); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	if _, err := sr.Unify(name, dataVal); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// builtinConfigSchema describes the run configuration. Definitions are
// closed, so unknown keys are rejected.
const builtinConfigSchema = `
#Config: {
	// Glob patterns of schema fragments, at least one.
	files: [string, ...string]

	// Output target: a path, "-" for stdout or an sftp:// URL.
	output: string & !=""

	strictEnums: bool | *false
	policies:    [...string] | *[]
	lint:        bool | *false

	history: {
		enabled: bool | *false
		path:    string | *".aurora/history.db"
	}

	logging: {
		level:  *"info" | "trace" | "debug" | "warn" | "error"
		format: *"console" | "json"
	}

	tracing: {
		enabled:      bool | *false
		exporter:     *"stdout" | "otlp" | "none"
		endpoint:     string | *""
		insecure:     bool | *false
		samplingRate: number & >=0 & <=1 | *1.0
	}

	metrics: {
		listenAddress: string | *""
		textfile:      string | *""
	}

	remote: {
		privateKeyPath:        string | *""
		knownHostsPath:        string | *""
		strictHostKeyChecking: bool | *true
		timeout:               string | *"30s"
	}
}
`
