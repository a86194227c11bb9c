package console

import (
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/pkg/browser"
)

// BrowserOpener opens links in the system browser. Only http and https
// links are accepted.
type BrowserOpener struct {
	open func(string) error
}

// NewBrowserOpener creates an opener using the platform browser.
func NewBrowserOpener() *BrowserOpener {
	browser.Stdout = io.Discard
	return &BrowserOpener{open: browser.OpenURL}
}

// OpenExternalLink implements ports.LinkOpener.
func (o *BrowserOpener) OpenExternalLink(link string) error {
	if err := checkLink(link); err != nil {
		return err
	}
	if err := o.open(link); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

// PrintOpener writes links instead of opening them, for headless use.
type PrintOpener struct {
	Out io.Writer
}

// OpenExternalLink implements ports.LinkOpener.
func (o PrintOpener) OpenExternalLink(link string) error {
	if err := checkLink(link); err != nil {
		return err
	}
	out := o.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintln(out, link)
	return err
}

func checkLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", link, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", link)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid link %q: missing host", link)
	}
	return nil
}
