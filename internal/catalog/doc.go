// Package catalog fetches the external song catalog.
//
// The catalog endpoint returns a JSON array of song records. Each record has
// a songNo identifier (string or number, the API is not consistent) and a
// courses object keyed by difficulty name, where each course optionally
// carries an images array of absolute URLs. Records are converted to
// model.Song as-is; skipping of malformed records happens downstream so that
// skips can be counted.
package catalog
