package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joshuapare/webmap/internal/poller"
	"github.com/joshuapare/webmap/internal/wire"
)

// reply is the envelope of the service's control endpoints.
type reply struct {
	Status  string `json:"status"`
	Msg     string `json:"msg,omitempty"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// call issues a GET against a service path and decodes the reply envelope.
func call(ctx context.Context, path string) (reply, error) {
	var r reply
	data, err := poller.NewHTTPFetcher(cfg.URL(path), cfg.FetchTimeout()).Fetch(ctx)
	if err != nil {
		return r, fmt.Errorf("service unreachable: %w", err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("%s: %w", path, wire.ErrMalformed)
	}
	switch r.Status {
	case wire.StatusOK:
		return r, nil
	case wire.StatusErr:
		return r, &wire.RemoteError{Msg: r.Msg}
	}
	return r, fmt.Errorf("%s: %w: status %q", path, wire.ErrMalformed, r.Status)
}
