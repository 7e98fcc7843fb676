package infra

import (
	"os"

	"go.uber.org/zap"

	"github.com/silvermoth/bg3loader/internal/domain"
)

// LogNotifier implements domain.Notifier against the logger only. Used in
// --cli mode where a console is attached and popups would be annoying.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a console notifier.
func NewLogNotifier(logger *zap.Logger) domain.Notifier {
	return &LogNotifier{logger: logger}
}

// Fatal logs the message and terminates the process.
func (n *LogNotifier) Fatal(title, message string) {
	n.logger.Error(message, zap.String("title", title))
	_ = n.logger.Sync()
	os.Exit(1)
}

// Warn logs the message and returns.
func (n *LogNotifier) Warn(title, message string) {
	n.logger.Warn(message, zap.String("title", title))
}

var _ domain.Notifier = (*LogNotifier)(nil)
