// Package window declares the windowing collaborator the sticky-note core
// drives. All methods of Toolkit, Handle and HubView, and every callback they
// deliver, run on the toolkit's single UI goroutine; other goroutines reach
// that goroutine through Toolkit.Post.
package window

import (
	"context"

	"github.com/starford/stickies/internal/models"
)

// Style is the visual configuration of a note window.
type Style struct {
	Background string `json:"background"`
	Bar        string `json:"bar"`
	Foreground string `json:"foreground"`
	FontFamily string `json:"fontFamily"`
	FontSize   int    `json:"fontSize"`
	Bold       bool   `json:"bold"`
}

// Handle is one note window.
type Handle interface {
	SetGeometry(g models.Geometry)
	SetStyle(s Style)
	SetBorderless(b bool)
	SetText(text string)
	Text() string
	// Geometry reports the live size and root position.
	Geometry() models.Geometry
	// OnEdit registers the callback fired for every keystroke in the text box.
	OnEdit(fn func())
	// OnCloseRequest registers the callback fired when the user asks to
	// close the window. The window stays open until Destroy.
	OnCloseRequest(fn func())
	Destroy()
}

// Decorated is implemented by handles whose Geometry reports an origin
// offset from the position the window was placed at, as a window manager
// frame does. Only for those do the style's xAdjust/yAdjust offsets apply;
// any other handle reports back the geometry it was given.
type Decorated interface {
	Decorated() bool
}

// HubView is the hub's own window listing the open notes.
type HubView interface {
	SetSummary(ids []string)
	Destroy()
}

// Toolkit creates windows and owns the UI event loop.
type Toolkit interface {
	CreateWindow(title string) (Handle, error)
	CreateHubView() HubView
	// Post schedules fn on the UI goroutine. It is safe from any goroutine.
	Post(fn func())
	// Run blocks in the event loop until Quit is called or ctx is done.
	Run(ctx context.Context) error
	// Quit ends Run. Calling it more than once is harmless.
	Quit()
}
