package content

import (
	"fmt"
	"strings"
)

// Template fallbacks are the last tier: deterministic content used when the
// library has no match and no language model is available.

func templateResult(req Request) *Result {
	name := req.ChildName
	if name == "" {
		name = "friend"
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = "a magical forest"
	}

	switch req.Kind {
	case KindSong:
		return &Result{
			Kind:  KindSong,
			Title: "A Song Just for You",
			Tier:  TierTemplate,
			Body: fmt.Sprintf(
				"La la la, hello %s, it's time to sing along! "+
					"We'll hum about %s in our happy little song. "+
					"Clap your hands and tap your feet and sing it loud and strong, "+
					"la la la, dear %s, you can't sing this song wrong!",
				name, topic, name),
		}
	case KindJoke:
		return &Result{
			Kind:  KindJoke,
			Title: "A Silly Riddle",
			Tier:  TierTemplate,
			Body: fmt.Sprintf(
				"Why did %s smile at the clock? Because it had lots of time for fun, %s!",
				topic, name),
		}
	default:
		return &Result{
			Kind:  KindStory,
			Title: "A Little Adventure",
			Tier:  TierTemplate,
			Body: fmt.Sprintf(
				"Once upon a time, %s went on a little adventure to see %s. "+
					"Along the way they met a friendly bluebird who sang them a song, "+
					"and a wise old turtle who shared a yummy snack. When the sun began "+
					"to set, %s waved goodbye to their new friends and headed home, "+
					"already dreaming about tomorrow's adventure. The end.",
				name, topic, name),
		}
	}
}
