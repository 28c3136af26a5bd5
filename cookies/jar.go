// Package cookies persists the browser session's cookie set between
// runs. The file is a plain JSON array, read once at run start and
// overwritten wholesale after every successful navigation — there are
// no merge semantics and no versioning.
package cookies

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-rod/rod/lib/proto"
)

// Jar is a file-backed cookie store. A single run is the only writer,
// so no locking is performed.
type Jar struct {
	path string
}

// New creates a Jar backed by the given file path.
func New(path string) *Jar {
	return &Jar{path: path}
}

// Path returns the backing file path.
func (j *Jar) Path() string { return j.path }

// Load reads the persisted cookie set and converts it to the parameter
// form accepted by page.SetCookies. A missing file yields (nil, nil):
// the first run of a fresh deployment simply starts without a session.
func (j *Jar) Load() ([]*proto.NetworkCookieParam, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("cookies: read %s: %w", j.path, err)
	}

	var stored []*proto.NetworkCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("cookies: decode %s: %w", j.path, err)
	}

	params := make([]*proto.NetworkCookieParam, 0, len(stored))
	for _, c := range stored {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			Expires:  c.Expires,
		})
	}
	return params, nil
}

// Save overwrites the jar with the full cookie set of the current
// session.
func (j *Jar) Save(cookies []*proto.NetworkCookie) error {
	data, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("cookies: encode: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0o644); err != nil {
		return fmt.Errorf("cookies: write %s: %w", j.path, err)
	}
	return nil
}
