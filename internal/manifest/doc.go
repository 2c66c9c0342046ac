// Package manifest turns the persisted image tree into the published
// previews index.
//
// The manifest is a JSON object mapping song number to difficulty key
// ("1".."5") to the ordered list of public URLs for that difficulty's stored
// images. It is rebuilt from scratch by scanning the tree; filenames that do
// not match the resolver's grammar are reported and left out.
package manifest
