package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"gocloud.dev/blob"
)

// imageExtensions is the set of stored file extensions included in the
// manifest. Anything else in the tree is ignored.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
}

// Previews maps song number -> difficulty key ("1".."5") -> ordered list of
// public URLs for the stored images of that difficulty.
type Previews map[string]map[string][]string

// entry is one parsed file, held until the whole song is scanned so URLs can
// be emitted in position order.
type entry struct {
	position int
	filename string
}

// Generate scans the stored tree and builds the preview manifest. Filenames
// must match the resolver's grammar: a bare difficulty ("4.png", implied
// position 1) or difficulty_position ("4_2.png"), difficulty within 1-5.
// Names that do not parse are returned as warnings and excluded.
func Generate(ctx context.Context, bucket *blob.Bucket, baseURL string) (Previews, []string, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")

	perSong := make(map[string]map[int][]entry)
	var warnings []string

	iter := bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("list bucket: %w", err)
		}
		if obj.IsDir {
			continue
		}

		songNo, filename := path.Split(obj.Key)
		songNo = strings.Trim(songNo, "/")
		if songNo == "" || strings.Contains(songNo, "/") {
			// Not a song/file pair; nothing of ours lives at other depths.
			continue
		}

		if _, ok := imageExtensions[strings.ToLower(path.Ext(filename))]; !ok {
			continue
		}

		difficulty, position, ok := parseFilename(filename)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unparsable filename %s", obj.Key))
			continue
		}

		if perSong[songNo] == nil {
			perSong[songNo] = make(map[int][]entry)
		}
		perSong[songNo][difficulty] = append(perSong[songNo][difficulty], entry{
			position: position,
			filename: filename,
		})
	}

	previews := make(Previews, len(perSong))
	for songNo, byDifficulty := range perSong {
		difficulties := make(map[string][]string, 5)
		for d := 1; d <= 5; d++ {
			entries := byDifficulty[d]
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].position < entries[j].position
			})
			urls := make([]string, 0, len(entries))
			for _, e := range entries {
				urls = append(urls, fmt.Sprintf("%s/%s/%s", baseURL, songNo, e.filename))
			}
			difficulties[strconv.Itoa(d)] = urls
		}
		previews[songNo] = difficulties
	}

	return previews, warnings, nil
}

// parseFilename extracts (difficulty, position) from a stored filename.
// "4.png" parses as (4, 1); "4_2.png" as (4, 2). Difficulties outside 1-5
// and any other shape fail.
func parseFilename(filename string) (difficulty, position int, ok bool) {
	stem := strings.TrimSuffix(filename, path.Ext(filename))

	if before, after, found := strings.Cut(stem, "_"); found {
		d, err1 := strconv.Atoi(before)
		p, err2 := strconv.Atoi(after)
		if err1 != nil || err2 != nil || d < 1 || d > 5 {
			return 0, 0, false
		}
		return d, p, true
	}

	d, err := strconv.Atoi(stem)
	if err != nil || d < 1 || d > 5 {
		return 0, 0, false
	}
	return d, 1, true
}

// Write marshals the manifest to path as indented JSON.
func (p Previews) Write(path string) error {
	data, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// TotalImages counts every URL in the manifest.
func (p Previews) TotalImages() int {
	total := 0
	for _, difficulties := range p {
		for _, urls := range difficulties {
			total += len(urls)
		}
	}
	return total
}
