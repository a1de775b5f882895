package clipboard

import (
	atotto "github.com/atotto/clipboard"

	"binflip/internal/application/port"
)

// Writer copies text to the local system clipboard so the winning auction
// command can be pasted straight into the game.
type Writer struct{}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Copy(text string) error {
	return atotto.WriteAll(text)
}

var _ port.Clipboard = (*Writer)(nil)
