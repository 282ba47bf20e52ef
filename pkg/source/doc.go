// Package source finds, reads and parses schema fragments.
//
// Expand turns the configured glob patterns into an ordered file list, Loader
// parses and validates each file into a schema.Fragment, and Watcher reports
// changes to the fragment directories so a caller can rebuild.
package source
