// Package proxy routes gateway traffic to the downstream services,
// applying the public-to-internal path rewrites.
package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/chatapp/internal/gateway/config"
	"github.com/dmitrijs2005/chatapp/internal/logging"
)

type route struct {
	prefix  string
	rewrite string // replacement for prefix on the outgoing path, empty keeps it
	proxy   *httputil.ReverseProxy
}

// Proxy dispatches requests by path prefix. Routes are matched in
// registration order, first match wins.
type Proxy struct {
	routes []route
	logger logging.Logger
}

// New builds the route table from config:
//
//	/api/auth/**   -> user service, rewritten to /api/users/**
//	/api/users/**  -> user service
//	/api/upload/** -> user service
//	/api/chat/**   -> websocket service
//	/ws/**         -> websocket service
//	/health        -> user service
//	/actuator/**   -> user service
func New(cfg *config.Config, logger logging.Logger) (*Proxy, error) {
	userURL, err := url.Parse(cfg.UserServiceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid user service URL: %w", err)
	}
	wsURL, err := url.Parse(cfg.WebsocketServiceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket service URL: %w", err)
	}

	p := &Proxy{logger: logger.With("module", "proxy")}
	p.add("/api/auth/", "/api/users/", userURL)
	p.add("/api/users/", "", userURL)
	p.add("/api/upload/", "", userURL)
	p.add("/api/chat/", "", wsURL)
	p.add("/ws/", "", wsURL)
	p.add("/health", "", userURL)
	p.add("/actuator", "", userURL)
	return p, nil
}

func (p *Proxy) add(prefix string, rewrite string, target *url.URL) {
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if rewrite != "" {
				pr.Out.URL.Path = rewrite + strings.TrimPrefix(pr.In.URL.Path, prefix)
			} else {
				pr.Out.URL.Path = pr.In.URL.Path
			}
		},
	}
	p.routes = append(p.routes, route{prefix: prefix, rewrite: rewrite, proxy: rp})
}

// ServeHTTP forwards the request to the first route whose prefix matches,
// or answers 404 for paths outside the table.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, rt := range p.routes {
		if strings.HasPrefix(r.URL.Path, rt.prefix) {
			rt.proxy.ServeHTTP(w, r)
			return
		}
	}

	p.logger.Warn(r.Context(), "no route", "path", r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"Not Found","message":"No route for this path"}`))
}
