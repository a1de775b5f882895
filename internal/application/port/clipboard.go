package port

// Clipboard copies the winning auction reference for quick in-game pasting.
type Clipboard interface {
	Copy(text string) error
}
