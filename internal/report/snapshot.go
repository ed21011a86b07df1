package report

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	snapshotWidth  = 1200
	snapshotHeight = 900
)

// snapshotPNG renders the HTML report to a PNG through headless chrome.
// Failures here are reported to the caller and never affect the written
// text artifacts.
func snapshotPNG(ctx context.Context, html []byte) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(snapshotWidth, snapshotHeight),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
