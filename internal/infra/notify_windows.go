//go:build windows

package infra

import (
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/silvermoth/bg3loader/internal/domain"
)

const (
	mbOK            = 0x00000000
	mbIconError     = 0x00000010
	mbIconWarning   = 0x00000030
	mbSetForeground = 0x00010000
	mbSystemModal   = 0x00001000
	mbTaskModal     = 0x00002000
)

// PopupNotifier implements domain.Notifier with MessageBox popups. The tool
// normally runs without a console, so popups are the only way the user sees
// fatal conditions.
type PopupNotifier struct {
	logger *zap.Logger
}

// NewPopupNotifier creates a popup notifier.
func NewPopupNotifier(logger *zap.Logger) domain.Notifier {
	return &PopupNotifier{logger: logger}
}

// Fatal shows an error popup, then terminates the process.
func (n *PopupNotifier) Fatal(title, message string) {
	n.logger.Error(message, zap.String("title", title))
	_ = n.logger.Sync()
	messageBox(title, message, mbOK|mbIconError|mbSetForeground|mbSystemModal)
	os.Exit(1)
}

// Warn shows a warning popup and returns.
func (n *PopupNotifier) Warn(title, message string) {
	n.logger.Warn(message, zap.String("title", title))
	messageBox(title, message, mbOK|mbIconWarning|mbSetForeground|mbTaskModal)
}

func messageBox(title, message string, style uint32) {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return
	}
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	_, _ = windows.MessageBox(0, text, caption, style)
}

var _ domain.Notifier = (*PopupNotifier)(nil)
