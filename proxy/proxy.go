// Package proxy defines the boundary to the external proxy supplier.
// The pool itself lives outside this repository; the pipeline only
// asks for "a usable proxy URL or none".
package proxy

import "os"

// Source yields a proxy URL for the next run. An empty string means
// no proxy is available, which is never an error — the run proceeds
// without one.
type Source interface {
	Get() string
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func() string

func (f SourceFunc) Get() string { return f() }

// None is a Source that never supplies a proxy.
var None Source = SourceFunc(func() string { return "" })

// FromEnv reads a single static proxy URL from the given environment
// variable, typically pointed at the external rotator's endpoint.
func FromEnv(key string) Source {
	return SourceFunc(func() string { return os.Getenv(key) })
}
