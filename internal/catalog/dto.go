package catalog

import (
	"encoding/json"

	"github.com/kirisamevanilla/chartdl/internal/model"
)

// songNumber handles the catalog's loose typing of the songNo field, which
// appears both as a JSON string and as a bare number depending on the record.
type songNumber string

// UnmarshalJSON accepts a string, a number, or null.
func (n *songNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = songNumber(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*n = songNumber(num.String())
		return nil
	}

	// null or an unexpected shape: leave empty, the record is skipped later.
	*n = ""
	return nil
}

// jsonSong is the deserialized catalog record.
type jsonSong struct {
	SongNo  songNumber             `json:"songNo"`
	Courses map[string]*jsonCourse `json:"courses"`
}

// jsonCourse is the per-difficulty chart metadata.
type jsonCourse struct {
	Images []string `json:"images"`
}

// toSong converts a catalog record to the model type.
func (js jsonSong) toSong() model.Song {
	song := model.Song{SongNo: string(js.SongNo)}
	if len(js.Courses) > 0 {
		song.Courses = make(map[string]*model.Course, len(js.Courses))
		for name, course := range js.Courses {
			if course == nil {
				song.Courses[name] = nil
				continue
			}
			song.Courses[name] = &model.Course{Images: course.Images}
		}
	}
	return song
}
