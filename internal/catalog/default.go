package catalog

// Voice assignments, one synthesis voice per line.
const (
	voiceOperator   = "ash"
	voiceDirectory  = "cedar"
	voiceWeather    = "marin"
	voiceTime       = "verse"
	voiceHoroscope  = "nova"
	voiceScience    = "sage"
	voiceStory      = "fable"
	voiceJoke       = "coral"
	voiceComplaints = "ballad"
	voicePrayer     = "shimmer"
)

// Default returns the production service table. Extensions spell the service
// name on a telephone keypad (Q and Z excluded), except the traditional 0 and
// 411.
func Default() (*Catalog, error) {
	return New("OPERATOR",
		&Service{
			Key:       "OPERATOR",
			Extension: "0",
			Loop:      true,
			Voice:     voiceOperator,
			Opener:    "Operator. How may I help you?",
		},
		&Service{
			Key:       "DIRECTORY",
			Extension: "411",
			Loop:      true,
			Voice:     voiceDirectory,
			Opener:    "Directory assistance. Whom would you like to reach?",
			Directory: true,
		},
		&Service{
			Key:        "SCIENCE",
			Extension:  "7243",
			Loop:       true,
			Voice:      voiceScience,
			TurnPrompt: "You host a late-night science line. Today's dispatch from the lab: {space_event} Also on the wire: {nasa_event} Share one wonder at a time, ask the caller a question back, keep each reply under three sentences.",
			Requires:   []string{"space", "nasa"},
			Sampling:   Sampling{Temperature: 0.8, MaxTokens: 140},
			Handler:    HandlerPersona,
		},
		&Service{
			Key:        "STORY",
			Extension:  "7867",
			Loop:       true,
			Voice:      voiceStory,
			TurnPrompt: "You are a fireside story-teller on a telephone line. Weave tonight's tale around real history: {history_items} Tell it in short spoken passages and pause for the caller between them.",
			Requires:   []string{"onthisday"},
			Sampling:   Sampling{Temperature: 0.9, MaxTokens: 160},
			Handler:    HandlerPersona,
		},
		&Service{
			Key:        "COMPLAINTS",
			Extension:  "2667",
			Loop:       true,
			Voice:      voiceComplaints,
			Opener:     "Complaints department. What seems to be the problem?",
			TurnPrompt: "You staff the city complaints department. The freshest complaint on file is: {complaint}. Commiserate with the caller, world-weary but kind, one or two sentences.",
			Requires:   []string{"complaint"},
			Sampling:   Sampling{Temperature: 0.8, MaxTokens: 120},
			Handler:    HandlerPersona,
		},
		&Service{
			Key:       "TIME",
			Extension: "8463",
			Loop:      false,
			Voice:     voiceTime,
			Closer:    "Goodbye.",
			Handler:   HandlerClock,
		},
		&Service{
			Key:        "WEATHER",
			Extension:  "9328",
			Loop:       false,
			Voice:      voiceWeather,
			Closer:     "Remember folks, if you don't like the weather, wait five minutes. Good-bye.",
			TurnPrompt: "You are a radio weather announcer. Current conditions for {place}: {temp_f} degrees, wind {wind_mph} miles an hour, precipitation {precipitation_in} inches. Read it as one breezy on-air report, no fake precision.",
			Requires:   []string{"weather"},
			Sampling:   Sampling{Temperature: 0.9, MaxTokens: 140},
			Handler:    HandlerPersona,
		},
		&Service{
			Key:        "JOKE",
			Extension:  "5653",
			Loop:       false,
			Voice:      voiceJoke,
			TurnPrompt: "You are a Dial-a-Joke line. Tell ONE short joke and stop.",
			Sampling:   Sampling{Temperature: 0.9, MaxTokens: 120},
			Handler:    HandlerPersona,
		},
		&Service{
			Key:        "PRAYER",
			Extension:  "7729",
			Loop:       false,
			Voice:      voicePrayer,
			TurnPrompt: "You are Dial-a-Prayer. Offer one short, gentle, non-denominational blessing for {day_of_week} and stop.",
			Sampling:   Sampling{Temperature: 0.7, MaxTokens: 120},
			Handler:    HandlerPersona,
		},
		&Service{
			Key:        "HOROSCOPE",
			Extension:  "4676",
			Loop:       false,
			Voice:      voiceHoroscope,
			TurnPrompt: "You are a telephone horoscope line. Today the sun is in {zodiac_sign}, the moon is a {moon_phase} at {lunar_illumination} percent, the day belongs to {ruling_planet}, and we are under {eclipse_season}. Deliver one dramatic reading for the caller and sign off.",
			Sampling:   Sampling{Temperature: 1.0, MaxTokens: 160},
			Handler:    HandlerPersona,
		},
	)
}
