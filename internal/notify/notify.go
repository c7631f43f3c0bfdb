// Package notify is the fire-and-forget notification surface the registries
// report outcomes to.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/amire/crewboard/internal/infrastructure/logger"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notifier displays a transient message. Implementations must not block.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Func adapts a plain function to Notifier.
type Func func(message string, severity Severity)

func (f Func) Notify(message string, severity Severity) { f(message, severity) }

// Discard drops every notification.
var Discard Notifier = Func(func(string, Severity) {})

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a notifier backed by the application logger.
func NewLogNotifier(l *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: l.WithComponent("notify")}
}

func (n *LogNotifier) Notify(message string, severity Severity) {
	switch severity {
	case SeverityError:
		n.logger.Warnw(message, "severity", severity)
	default:
		n.logger.Infow(message, "severity", severity)
	}
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8a80")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa"))
)

// Console renders notifications as colored lines, the terminal equivalent of
// a toast.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console notifier writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(message string, severity Severity) {
	var line string
	switch severity {
	case SeveritySuccess:
		line = successStyle.Render("✔ " + message)
	case SeverityError:
		line = errorStyle.Render("✘ " + message)
	default:
		line = infoStyle.Render("• " + message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// Multi fans a notification out to several notifiers.
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(message string, severity Severity) {
		for _, n := range notifiers {
			n.Notify(message, severity)
		}
	})
}
