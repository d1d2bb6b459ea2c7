// Package common_tools provides the tools the agent may call.
//
// Available tools:
//   - get_student_status: Look up the admission status of a student by id
//
// Each tool is defined in its own file. Declarations shown to the model are
// generated from the Go signatures into schemas/ and embedded at build time.
package common_tools
