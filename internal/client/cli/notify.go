package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/fleetconsole/internal/client/session"
)

// terminalNotifier prints session notifications as single lines.
type terminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func (n *terminalNotifier) Success(msg string) { n.print("ok", msg) }

func (n *terminalNotifier) Error(msg string) { n.print("error", msg) }

func (n *terminalNotifier) print(kind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", kind, msg)
}

var _ session.Notifier = (*terminalNotifier)(nil)
