package retarget

import "github.com/binzume/vrmanim/anim"

// FindTrack returns the first track named name, or nil.
func FindTrack(name string, tracks []*anim.Track) *anim.Track {
	for _, t := range tracks {
		if t.Name == name {
			return t
		}
	}
	return nil
}
