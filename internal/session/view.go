package session

// View is the screen the client is on.
type View int

const (
	ViewOnboarding View = iota
	ViewChat
	ViewSettings
	ViewJournal
)

func (v View) String() string {
	switch v {
	case ViewOnboarding:
		return "onboarding"
	case ViewChat:
		return "chat"
	case ViewSettings:
		return "settings"
	case ViewJournal:
		return "journal"
	default:
		return "unknown"
	}
}
