//go:build windows

package daemon

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"
)

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon   *Daemon
	logger   *zap.Logger
	quit     chan struct{}
	quitOnce sync.Once
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(trayIcon())
	systray.SetTitle("AT")
	systray.SetTooltip("Attendance Tracker")

	mMarkPresent := systray.AddMenuItem("Mark Present", "Mark today as attended")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show current phase status")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	go func() {
		if err := t.daemon.Run(t.daemon.ctx); err != nil {
			t.logger.Error("Daemon stopped with error", zap.Error(err))
		}
		systray.Quit()
	}()

	go func() {
		for {
			select {
			case <-mMarkPresent.ClickedCh:
				t.logger.Info("Mark Present clicked from tray")
				go t.markPresent()
			case <-mStatus.ClickedCh:
				t.logger.Info("Status clicked from tray")
				go t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	t.quitOnce.Do(func() { close(t.quit) })
}

// Notify shows the notification in a message box
func (t *TrayApp) Notify(ctx context.Context, n Notification) error {
	t.ShowNotification(n.Title, n.Body)
	return nil
}

// ShowNotification updates the tooltip and shows a message box without blocking
func (t *TrayApp) ShowNotification(title, message string) {
	systray.SetTooltip(title)
	go showMessageBox(title, message)
}

func (t *TrayApp) markPresent() {
	stats, err := t.daemon.MarkPresentToday(t.daemon.ctx)
	if err != nil {
		t.logger.Error("Failed to mark present", zap.Error(err))
		t.ShowNotification("Mark Present Failed", fmt.Sprintf("Error: %v", err))
		return
	}

	message := "Marked present for today"
	if stats != nil {
		message += "\n" + stats.Name + ": " + phaseSummary(*stats)
	}
	t.ShowNotification("Attendance Marked", message)
}

func (t *TrayApp) showStatus() {
	message := t.daemon.Status(t.daemon.ctx)
	t.logger.Info("Current status", zap.String("status", message))
	showMessageBox("Attendance Status", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}

// trayIcon renders a 16x16 green square with a white check as an .ico
func trayIcon() []byte {
	const size = 16
	pixels := make([]byte, 0, size*size*4)
	// BMP rows are stored bottom-up, BGRA
	for y := size - 1; y >= 0; y-- {
		for x := 0; x < size; x++ {
			if isCheckMark(x, y) {
				pixels = append(pixels, 0xFF, 0xFF, 0xFF, 0xFF)
			} else {
				pixels = append(pixels, 0x50, 0xAF, 0x4C, 0xFF) // #4CAF50
			}
		}
	}
	mask := make([]byte, size*4) // 1 bit per pixel, rows padded to 32 bits

	var header bytes.Buffer
	dibSize := 40 + len(pixels) + len(mask)

	// ICONDIR
	binary.Write(&header, binary.LittleEndian, []uint16{0, 1, 1})
	// ICONDIRENTRY
	header.Write([]byte{size, size, 0, 0})
	binary.Write(&header, binary.LittleEndian, []uint16{1, 32})
	binary.Write(&header, binary.LittleEndian, []uint32{uint32(dibSize), 6 + 16})
	// BITMAPINFOHEADER, height doubled for the AND mask
	binary.Write(&header, binary.LittleEndian, []uint32{40, size, size * 2})
	binary.Write(&header, binary.LittleEndian, []uint16{1, 32})
	binary.Write(&header, binary.LittleEndian, []uint32{0, uint32(len(pixels) + len(mask)), 0, 0, 0, 0})

	header.Write(pixels)
	header.Write(mask)
	return header.Bytes()
}

func isCheckMark(x, y int) bool {
	switch {
	case x >= 3 && x <= 6:
		return y == x+5 || y == x+6
	case x > 6 && x <= 12:
		return y == 18-x || y == 19-x
	}
	return false
}
