package dialogue

// Reply texts for each stage of the conversation. Keeping them in one place
// makes the copy reviewable without digging through the state machine.
const (
	greetingReply = "Hello!\nI'll assist you step-by-step to create the perfect travel plan in Izmir!\n\nLet's start with which places would you like to visit? (You can type Çeşme, Konak.. etc)"

	locationsReprompt = "Which locations in Izmir would you like to visit? (e.g. Çeşme, Konak...)"

	categoryPrompt   = "What type of tour are you interested in? (e.g. historical sites, city life, beaches)"
	categoryReprompt = "Please specify what type of tour you're interested in (e.g. historical sites, city life, beaches)"

	datePrompt   = "What date do you plan to travel? (e.g. 15 April)"
	dateReprompt = "Please provide your travel date in a format like '15 April'."

	startOverReply = "Let's start over.\nWhich locations in Izmir would you like to visit? (e.g. Çeşme, Konak...)"

	lostLocationsReply = "I couldn't find the locations. Let's start again.\nWhich places would you like to visit in Izmir? (e.g. Konak, Çeşme...)"

	internalFaultReply = "Sorry, something went wrong on our side. Let's start over.\nWhich places would you like to visit in Izmir? (e.g. Konak, Çeşme...)"
)
