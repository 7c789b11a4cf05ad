// Package fcdberr defines the error taxonomy shared by every fcdb
// package. Callers distinguish failure kinds with Is or KindOf against
// the Kind values rather than parsing error strings, and cmd/fcdbd
// uses Kind to pick a process exit code.
package fcdberr
