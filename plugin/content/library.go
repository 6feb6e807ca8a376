package content

import "strings"

// libraryEntry is one curated piece of content.
type libraryEntry struct {
	Kind   Kind
	Title  string
	Topics []string
	Body   string
}

// curatedLibrary is the first tier: hand-reviewed content that needs no
// generation and no safety pass.
var curatedLibrary = []libraryEntry{
	{
		Kind:   KindStory,
		Title:  "The Moon Rabbit's Garden",
		Topics: []string{"space", "moon", "rabbit", "garden"},
		Body: "Once upon a time, a little rabbit lived on the moon. " +
			"Every night she planted silver seeds in the moon dust, and every " +
			"morning tiny star-flowers bloomed. One day a shooting star landed " +
			"in her garden, lost and far from home. The rabbit watered it with " +
			"stardust until it glowed bright again, and together they flew it " +
			"back to its family in the sky. The end.",
	},
	{
		Kind:   KindStory,
		Title:  "The Brave Little Boat",
		Topics: []string{"ocean", "boat", "sea", "adventure"},
		Body: "A little red boat lived in a quiet harbor. She dreamed of the " +
			"big blue sea, but the waves looked awfully tall. One morning a " +
			"friendly whale said, \"Follow me, I know the gentle paths.\" " +
			"The little boat took a deep breath and sailed out. The waves " +
			"lifted her up and down like a dance, and she laughed the whole " +
			"way. That night she sailed home under the stars, brave and proud. " +
			"The end.",
	},
	{
		Kind:   KindStory,
		Title:  "The Dinosaur Who Loved to Paint",
		Topics: []string{"dinosaur", "dinosaurs", "art", "painting"},
		Body: "Dot the dinosaur had very big feet and a very big dream: she " +
			"wanted to paint. Brushes were too small for her claws, so she " +
			"dipped her tail in berry juice and swooshed it across the canyon " +
			"wall. She painted suns and ferns and all her friends. Soon every " +
			"dinosaur came to add a splash, and the canyon became the world's " +
			"first art museum. The end.",
	},
	{
		Kind:   KindSong,
		Title:  "The Wiggly Waggly Song",
		Topics: []string{"dance", "wiggle", "silly"},
		Body: "Wiggle your fingers, waggle your toes, " +
			"spin in a circle and touch your nose! " +
			"Clap clap clap and stomp stomp stomp, " +
			"jump like a frog with a great big BOMP! " +
			"Wiggly waggly, that's the way, " +
			"we do the wiggle dance every day!",
	},
	{
		Kind:   KindSong,
		Title:  "Twinkle Little Rocket",
		Topics: []string{"space", "rocket", "stars"},
		Body: "Twinkle twinkle little rocket, " +
			"zooming with stars in your pocket. " +
			"Past the moon and past the sun, " +
			"counting planets one by one. " +
			"Twinkle twinkle little rocket, " +
			"zooming with stars in your pocket!",
	},
	{
		Kind:   KindJoke,
		Title:  "Dinosaur Joke",
		Topics: []string{"dinosaur", "dinosaurs"},
		Body:   "What do you call a dinosaur that is sleeping? A dino-SNORE!",
	},
	{
		Kind:   KindJoke,
		Title:  "Ocean Joke",
		Topics: []string{"ocean", "sea", "fish"},
		Body:   "Why did the fish blush? Because it saw the ocean's bottom!",
	},
	{
		Kind:   KindJoke,
		Title:  "Space Joke",
		Topics: []string{"space", "moon", "stars"},
		Body:   "How does the moon cut its hair? Eclipse it!",
	},
}

// findLibraryMatch returns a curated entry matching the request topic, or nil.
// An empty topic matches the first entry of the kind.
func findLibraryMatch(req Request) *libraryEntry {
	topic := strings.ToLower(strings.TrimSpace(req.Topic))
	for i := range curatedLibrary {
		entry := &curatedLibrary[i]
		if entry.Kind != req.Kind {
			continue
		}
		if topic == "" {
			return entry
		}
		for _, t := range entry.Topics {
			if strings.Contains(topic, t) {
				return entry
			}
		}
	}
	return nil
}
