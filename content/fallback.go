package content

import (
	"math/rand"

	"shortsbot/types"
)

// fallbackStories is the fixed local list used whenever the generation API
// fails. The pipeline never propagates an upstream failure; it falls back
// here instead.
var fallbackStories = []types.Story{
	{
		Title:   "The Second Knock",
		Body:    "The knock came at 3 AM. I looked through the peephole and saw myself standing outside, smiling. Then came the second knock. From inside the closet behind me.",
		Summary: "A late-night knock reveals the visitor is already inside.",
	},
	{
		Title:   "Last Voicemail",
		Body:    "My phone buzzed with a voicemail from my mother. We buried her on Sunday. Her voice was calm. She said the casket was roomier than she expected, but she wished we had not nailed it shut while she was still knocking.",
		Summary: "A voicemail arrives from someone already buried.",
	},
	{
		Title:   "The Babysitter's Question",
		Body:    "The babysitter called to ask if she could cover the clown statue in the kids' room. It kept staring at her. We told her to get the kids out of the house. We don't own a clown statue.",
		Summary: "The clown statue was never a statue.",
	},
	{
		Title:   "Smart Home",
		Body:    "My smart speaker said goodnight to me at 11 PM. At midnight it said goodnight again, softer, to someone else. I live alone, and the motion sensor in the attic had just logged its third step.",
		Summary: "A smart home greets a second occupant.",
	},
	{
		Title:   "The Photograph",
		Body:    "Grandpa's old camera still had film in it, so we developed the roll. Twelve photos of our house, taken from the tree line, each one a little closer. The last photo was of us, asleep, taken last night.",
		Summary: "An old film roll ends with a photo from last night.",
	},
	{
		Title:   "Population Sign",
		Body:    "The town sign said population 1,243. Someone had crossed it out and painted 1,242. As I drove past, I watched the paint drip, still wet, and my rearview mirror showed a figure lowering its brush and turning to follow my car.",
		Summary: "A town's population sign updates itself for the newest arrival.",
	},
	{
		Title:   "Night Shift",
		Body:    "Working the night shift alone, I waved at the security camera to greet my boss reviewing the feed. The next morning he asked who the person standing behind me was, waving back.",
		Summary: "The camera caught a second waver.",
	},
	{
		Title:   "The Drawing",
		Body:    "My daughter drew our family: me, her, and the tall gray man who lives in the walls. I laughed until she pointed at the hallway and said he doesn't like being drawn. The drywall there has been warm for a week.",
		Summary: "A child's family drawing has one member too many.",
	},
}

func randomFallback() *types.Story {
	s := fallbackStories[rand.Intn(len(fallbackStories))]
	return &s
}
