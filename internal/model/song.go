package model

// Song represents one record of the song catalog.
//
// The catalog is a JSON array of songs; each song carries a number used as
// its directory name and a map of courses keyed by difficulty name. A song
// without a number cannot be stored anywhere and is skipped by the task
// builder (counted, not errored).
type Song struct {
	// SongNo is the catalog identifier, used as the directory name for all
	// images belonging to this song. Empty means the record is malformed.
	SongNo string

	// Courses maps difficulty names ("easy", "normal", "hard", "oni", "ura")
	// to chart metadata. Entries may be nil.
	Courses map[string]*Course
}

// Course holds the chart metadata for one difficulty of a song.
type Course struct {
	// Images is the ordered list of chart-preview image URLs.
	// May be empty.
	Images []string
}

// Difficulty pairs a catalog difficulty name with its numeric tier.
type Difficulty struct {
	Name  string
	Value int
}

// Difficulties is the fixed difficulty mapping, in the order tasks are
// generated. The numeric value is what appears in destination filenames.
var Difficulties = []Difficulty{
	{"easy", 1},
	{"normal", 2},
	{"hard", 3},
	{"oni", 4},
	{"ura", 5},
}
