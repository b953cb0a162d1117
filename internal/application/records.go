package application

// Persisted record keys. They match the original browser storage keys so an
// exported store can be carried over.
const (
	PinHashKey = "gemini-chat-pin-hash"
	FactsKey   = "gemini-chat-memory-encrypted"
	UsageKey   = "gemini-daily-usage"
)
