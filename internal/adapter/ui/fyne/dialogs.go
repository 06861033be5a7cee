package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// FileDialog is a helper for picking an audio file to play and visualize.
type FileDialog struct {
	window     fyne.Window
	callback   func(string)
	logger     *slog.Logger
	extensions []string
}

// NewFileDialog creates a new file dialog limited to extensions.
// An empty extension list shows every file.
func NewFileDialog(window fyne.Window, extensions []string, callback func(string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:     window,
		callback:   callback,
		logger:     logger,
		extensions: extensions,
	}
}

// Show displays the file dialog.
func (d *FileDialog) Show() {
	open := dialog.NewFileOpen(d.handle, d.window)
	if filter := d.filter(); filter != nil {
		open.SetFilter(filter)
	}
	open.Show()
}

func (d *FileDialog) filter() storage.FileFilter {
	if len(d.extensions) == 0 {
		return nil
	}
	return storage.NewExtensionFileFilter(d.extensions)
}

func (d *FileDialog) handle(reader fyne.URIReadCloser, err error) {
	if err != nil {
		d.logger.Error("file dialog error", slog.Any("error", err))
		return
	}
	if reader == nil {
		return // User cancelled
	}
	defer reader.Close()

	filePath := reader.URI().Path()
	if d.callback != nil {
		d.callback(filePath)
	}
}
