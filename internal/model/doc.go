// Package model defines the core data structures used throughout chartdl.
//
// # Song
//
// Song represents a catalog record with its per-difficulty courses:
//
//	tasks := song.Tasks() // expands to download tasks, catalog order preserved
//
// # Task
//
// Task is one image download with a deterministic destination filename:
//
//	task.Filename() // "4.png", "4_2.png", ...
//
// # Outcome
//
// Outcome is the tagged result of one task, exactly one of Downloaded,
// Skipped or Failed:
//
//	model.Downloaded(1234)
//	model.Skipped("identical content")
//	model.Failed("HTTP 404")
package model
