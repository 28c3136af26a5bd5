package scraper

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/sidnevart/commercial-real-estate-analysis/extract"
)

// captureBuffer bounds how many intercepted bodies can wait for the
// cascade. Overflow drops the newest body rather than blocking the CDP
// event loop.
const captureBuffer = 8

// xhrCapture intercepts the page's API responses and feeds their
// bodies to the cascade's network stage. It must be installed BEFORE
// navigation: CDP only reports responses for listeners that were
// registered when the request fired.
type xhrCapture struct {
	bodies chan []byte
	cancel context.CancelFunc
}

// captureResponses enables the Network domain on the page and starts a
// listener goroutine that pulls the body of every response whose URL
// matches the listing API pattern.
func captureResponses(page *rod.Page) *xhrCapture {
	ctx, cancel := context.WithCancel(context.Background())
	c := &xhrCapture{
		bodies: make(chan []byte, captureBuffer),
		cancel: cancel,
	}

	_ = page.EnableDomain(&proto.NetworkEnable{})

	listener := page.Context(ctx)
	go listener.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		select {
		case <-ctx.Done():
			return true
		default:
		}
		if !extract.APIPathPattern.MatchString(e.Response.URL) {
			return false
		}
		res, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(listener)
		if err != nil {
			// Body may be gone already (redirect, cache hit); not fatal.
			slog.Debug("response body unavailable", "url", e.Response.URL, "error", err)
			return false
		}
		body := []byte(res.Body)
		if res.Base64Encoded {
			decoded, decErr := base64.StdEncoding.DecodeString(res.Body)
			if decErr != nil {
				slog.Debug("response body base64 decode failed", "url", e.Response.URL, "error", decErr)
				return false
			}
			body = decoded
		}
		select {
		case c.bodies <- body:
			slog.Debug("captured listing API response", "url", e.Response.URL, "bytes", len(body))
		default:
			slog.Debug("capture buffer full, dropping response", "url", e.Response.URL)
		}
		return false
	})()

	return c
}

// Bodies is the channel the network cascade stage consumes.
func (c *xhrCapture) Bodies() <-chan []byte { return c.bodies }

// stop detaches the listener goroutine.
func (c *xhrCapture) stop() { c.cancel() }
