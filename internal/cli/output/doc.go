// Package output provides result rendering for keyden-cli.
//
// Every command renders through a Formatter:
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned-column table rendering
//   - json.go: indented JSON for scripting
//   - yaml.go: YAML rendering
//   - spinner.go: progress animation for operations that wait
//
// The table renderer accepts an explicit Table or reflects over
// structs, slices and maps. Map rows render in sorted key order so
// output is stable.
//
// @design DS-0601
package output
