package ports

import "github.com/bft-labs/feedview/internal/domain"

// Renderer draws the list and the refresh indicator.
type Renderer interface {
	// Render replaces the displayed list. The view is never empty.
	Render(view domain.ListView)

	// RenderEmpty shows the empty state.
	RenderEmpty()

	// SetIndicatorVisible shows or hides the "refreshing" indicator.
	SetIndicatorVisible(visible bool)
}

// LinkOpener hands an entry link to the platform (browser, pager, ...).
type LinkOpener interface {
	OpenExternalLink(url string) error
}

// ErrorReporter surfaces non-fatal errors to the user.
type ErrorReporter interface {
	ReportError(kind domain.ErrorKind, message string)
}
