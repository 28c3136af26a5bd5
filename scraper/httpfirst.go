package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"
	"golang.org/x/net/proxy"

	"github.com/sidnevart/commercial-real-estate-analysis/extract"
	"github.com/sidnevart/commercial-real-estate-analysis/fingerprint"
	"github.com/sidnevart/commercial-real-estate-analysis/normalize"
)

// maxProbeBody caps the probe response size.
const maxProbeBody = 10 << 20

// tryHTTPFirst attempts the first entry URL over plain HTTP with a
// Chrome TLS fingerprint before paying for a browser launch. Listing
// markup served to the probe still carries the embedded script state,
// so the static cascade stages apply. Any shortfall — transport error,
// thin page, captcha wall, zero extracted offers — reports (nil, false)
// and the caller escalates to a real browser.
func (s *Scraper) tryHTTPFirst(ctx context.Context, posture fingerprint.Posture, proxyURL string) (*Result, bool) {
	if len(s.parserCfg.EntryURLs) == 0 {
		return nil, false
	}
	entry := s.parserCfg.EntryURLs[0]

	probeCtx, cancel := context.WithTimeout(ctx, s.parserCfg.HTTPTimeout)
	defer cancel()

	body, err := fetchChromeTLS(probeCtx, entry, posture, proxyURL)
	if err != nil {
		slog.Debug("http probe failed, escalating to browser", "url", entry, "error", err)
		return nil, false
	}

	page := string(body)
	if len(page) < s.parserCfg.MinContentSize {
		slog.Debug("http probe page too small, escalating", "bytes", len(page))
		return nil, false
	}
	if marker := detectionMarker(page, primaryMarkers); marker != "" {
		slog.Debug("http probe hit detection marker, escalating", "marker", marker)
		return nil, false
	}

	records, stage := extract.Run(probeCtx, []extract.Stage{
		extract.ScriptStage(page),
		extract.RepairStage(page),
	})
	offers := normalize.Offers(records, s.parserCfg.DealType)
	if len(offers) == 0 {
		slog.Debug("http probe extracted nothing, escalating", "title", pageTitle(page))
		return nil, false
	}

	slog.Info("http probe served the run", "url", entry, "title", pageTitle(page))
	return &Result{Offers: offers, Stage: stage, Method: "http"}, true
}

// fetchChromeTLS retrieves the URL over HTTP/1.1 with a Chrome TLS
// ClientHello, wearing the run posture's identity.
func fetchChromeTLS(ctx context.Context, targetURL string, posture fingerprint.Posture, proxyURL string) ([]byte, error) {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr, proxyURL)
		},
		ForceAttemptHTTP2: false,
	}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("probe: build request: %w", err)
	}
	req.Header.Set("User-Agent", posture.UserAgent)
	req.Header.Set("Accept-Encoding", "identity")
	for k, v := range posture.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("probe: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return nil, fmt.Errorf("probe: read body: %w", err)
	}
	return body, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome
// ClientHello via utls. A socks5 proxy URL routes the connection
// through the proxy with a full CONNECT negotiation, so the TLS
// handshake runs against the target, not the proxy.
func dialTLSChrome(ctx context.Context, network, addr, proxyURL string) (net.Conn, error) {
	var rawConn net.Conn
	dialer := &net.Dialer{}

	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil && (u.Scheme == "socks5" || u.Scheme == "socks5h") {
			conn, socksErr := dialSOCKS5(ctx, u, network, addr, dialer)
			if socksErr != nil {
				return nil, socksErr
			}
			rawConn = conn
		}
	}

	if rawConn == nil {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		rawConn = conn
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(rawConn, &tls.Config{ServerName: host}, tls.HelloChrome_Auto)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// dialSOCKS5 opens a connection to addr through the proxy described
// by u, including credentials from the URL's userinfo.
func dialSOCKS5(ctx context.Context, u *url.URL, network, addr string, forward *net.Dialer) (net.Conn, error) {
	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}

	socksDialer, err := proxy.SOCKS5("tcp", u.Host, auth, forward)
	if err != nil {
		return nil, fmt.Errorf("socks5 dialer: %w", err)
	}

	if cd, ok := socksDialer.(proxy.ContextDialer); ok {
		conn, dialErr := cd.DialContext(ctx, network, addr)
		if dialErr != nil {
			return nil, fmt.Errorf("socks5 dial: %w", dialErr)
		}
		return conn, nil
	}
	conn, dialErr := socksDialer.Dial(network, addr)
	if dialErr != nil {
		return nil, fmt.Errorf("socks5 dial: %w", dialErr)
	}
	return conn, nil
}

// pageTitle extracts the first <title> text for log context.
func pageTitle(page string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(page))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			if tn, _ := tokenizer.TagName(); string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}
