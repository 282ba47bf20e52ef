// Package config loads the run configuration of a consolidation.
//
// # Overview
//
// A configuration names the schema fragments to merge (glob patterns, in
// order), the output target and the optional features of a run: strict enum
// merging, schema policies, run history, logging, tracing, metrics and the
// credentials used for sftp:// outputs.
//
// # Formats
//
// The file format is picked from the extension:
//
//   - .json and .cue are compiled with CUE
//   - .yaml and .yml are decoded with yaml.v3
//   - .star is executed as a Starlark script; its public globals are the keys
//
// Every format is unified with the closed #Config definition held by the
// SchemaRegistry, so unknown keys and type mismatches are reported with file
// positions. Struct tags are then checked with go-playground/validator.
//
// # Usage Example
//
//	loader := config.NewLoader()
//
//	cfg, err := loader.Load(ctx, config.Resolve("."))
//	if err != nil {
//	    var cfgErr *config.Error
//	    if errors.As(err, &cfgErr) {
//	        for _, ve := range cfgErr.Errors {
//	            fmt.Println(ve)
//	        }
//	    }
//	    return err
//	}
//
// Relative paths in the configuration are resolved against the directory of
// the configuration file.
package config
