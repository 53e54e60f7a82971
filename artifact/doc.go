// Package artifact manages the on-disk working directories of pipeline
// sessions. Each session owns one directory per stage (engagement,
// enrichment, synthesis) under a shared root; the controller hands a stage
// directory to the matching provider, so concurrent sessions never observe
// each other's files.
//
// All JSON artifacts are written atomically (temp file plus rename), so a
// crash mid-write never leaves a torn file behind and re-running a stage
// simply replaces its previous output.
package artifact
