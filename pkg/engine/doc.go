// Package engine runs the schema consolidation pipeline.
//
// # Overview
//
// A run turns a configuration into one consolidated schema:
//
//  1. Expand - Match the configured globs to an ordered list of files
//  2. Load - Parse and validate each file into a fragment (FragmentSource)
//  3. Register - Merge fragments in order with a fresh builder.Builder
//  4. Lint - Optionally evaluate policies on the aggregate (PolicyEngine)
//  5. Emit - Write or check the canonical text (Emitter)
//  6. Record - Optionally persist the run (HistoryStore)
//
// The collaborators are interfaces so the pipeline can be exercised without
// touching disk or network. Concrete implementations live in pkg/source,
// pkg/policy, pkg/emitter and pkg/stores.
//
// # Error Classification
//
// Failures are returned as *Error and classified for exit code mapping:
//
//   - Permanent: unreadable configuration, invalid fragments, blocking
//     policy violations, output failures
//   - Conflict: fragments that cannot be consolidated; the code names the
//     merge rule and Path the conflicting fragment
//   - Informational: nothing to do, such as no matching fragments
//
// Use the helper functions to inspect errors:
//
//	report, err := runner.Run(ctx, cfg, engine.RunOptions{})
//	switch {
//	case engine.IsInformational(err):
//	    // Nothing matched
//	case err != nil:
//	    // Fail
//	case report.Status == engine.RunStatusDrift:
//	    // Output out of date
//	}
//
// A check run that finds the output out of date is not an error; it
// reports RunStatusDrift.
//
// # Concurrency
//
// A Runner may be reused across runs but each run builds its own builder,
// so no consolidation state is shared.
package engine
