package loader

import (
	"embed"

	"github.com/nathoo/twoword/story"
)

//go:embed stories
var stories embed.FS

func init() {
	story.Register("cloak", FS(stories, "stories/cloak"))
}
