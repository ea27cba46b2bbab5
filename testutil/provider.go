package testutil

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/kbukum/cloudkit/component"
)

// Reply is one scripted answer of a ProviderServer.
type Reply struct {
	// Status is the HTTP status. Defaults to 200.
	Status int
	// Body is written verbatim.
	Body string
	// Header is added to the response.
	Header http.Header
	// Drop closes the connection without writing a response.
	Drop bool
	// Delay holds the response back; the wait ends early if the client goes away.
	Delay time.Duration
}

// Received is one request observed by a ProviderServer.
type Received struct {
	Method     string
	Host       string
	Path       string
	Header     http.Header
	Body       string
	Form       url.Values
	RemoteAddr string
}

// ProviderServer is a scripted fake provider endpoint.
type ProviderServer struct {
	name   string
	useTLS bool

	mu       sync.Mutex
	server   *httptest.Server
	script   []Reply
	fallback Reply
	received []Received
	remotes  map[string]struct{}
}

var _ TestComponent = (*ProviderServer)(nil)

// DefaultBody is served when the script is empty.
const DefaultBody = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// NewProviderServer creates a stopped server. Call Start before use.
func NewProviderServer(name string) *ProviderServer {
	p := &ProviderServer{name: name}
	p.resetLocked()
	return p
}

// WithTLS makes Start serve https with a self-signed certificate.
func (p *ProviderServer) WithTLS() *ProviderServer {
	p.useTLS = true
	return p
}

// Name implements component.Component.
func (p *ProviderServer) Name() string { return p.name }

// Start implements component.Component.
func (p *ProviderServer) Start(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.server != nil {
		return fmt.Errorf("provider server %s already started", p.name)
	}
	srv := httptest.NewUnstartedServer(http.HandlerFunc(p.handle))
	if p.useTLS {
		srv.StartTLS()
	} else {
		srv.Start()
	}
	p.server = srv
	return nil
}

// Stop implements component.Component.
func (p *ProviderServer) Stop(_ context.Context) error {
	p.mu.Lock()
	srv := p.server
	p.server = nil
	p.mu.Unlock()
	if srv != nil {
		srv.CloseClientConnections()
		srv.Close()
	}
	return nil
}

// Health implements component.Component.
func (p *ProviderServer) Health(_ context.Context) component.Health {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.server == nil {
		return component.Health{Name: p.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: p.name, Status: component.StatusHealthy}
}

// Reset implements TestComponent. It clears the script and the recorded
// requests but keeps the server running.
func (p *ProviderServer) Reset(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

func (p *ProviderServer) resetLocked() {
	p.script = nil
	p.received = nil
	p.remotes = map[string]struct{}{}
	p.fallback = Reply{Status: http.StatusOK, Body: DefaultBody}
}

// Enqueue appends replies to the script. Each request consumes one reply;
// once the script is exhausted the fallback is served.
func (p *ProviderServer) Enqueue(replies ...Reply) *ProviderServer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.script = append(p.script, replies...)
	return p
}

// Respond enqueues a reply with the given status and body.
func (p *ProviderServer) Respond(status int, body string) *ProviderServer {
	return p.Enqueue(Reply{Status: status, Body: body})
}

// DropConnection enqueues a reply that closes the connection mid-request.
func (p *ProviderServer) DropConnection() *ProviderServer {
	return p.Enqueue(Reply{Drop: true})
}

// SetFallback sets the reply served once the script is exhausted.
func (p *ProviderServer) SetFallback(r Reply) *ProviderServer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fallback = r
	return p
}

// Hits returns how many requests arrived.
func (p *ProviderServer) Hits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.received)
}

// Requests returns the requests received so far.
func (p *ProviderServer) Requests() []Received {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Received(nil), p.received...)
}

// Last returns the most recent request. It panics when none arrived.
func (p *ProviderServer) Last() Received {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.received[len(p.received)-1]
}

// Connections returns how many distinct client connections were seen.
func (p *ProviderServer) Connections() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.remotes)
}

// URL returns the base URL. Empty before Start.
func (p *ProviderServer) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.server == nil {
		return ""
	}
	return p.server.URL
}

// Endpoint returns the scheme, host and port a client should connect to.
func (p *ProviderServer) Endpoint() (scheme, host string, port int) {
	u, err := url.Parse(p.URL())
	if err != nil || u.Host == "" {
		return "", "", 0
	}
	h, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return u.Scheme, u.Host, 0
	}
	port, _ = strconv.Atoi(portStr)
	return u.Scheme, h, port
}

func (p *ProviderServer) next() Reply {
	if len(p.script) == 0 {
		return p.fallback
	}
	r := p.script[0]
	p.script = p.script[1:]
	return r
}

func (p *ProviderServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(body))

	p.mu.Lock()
	p.received = append(p.received, Received{
		Method:     r.Method,
		Host:       r.Host,
		Path:       r.URL.Path,
		Header:     r.Header.Clone(),
		Body:       string(body),
		Form:       form,
		RemoteAddr: r.RemoteAddr,
	})
	p.remotes[r.RemoteAddr] = struct{}{}
	reply := p.next()
	p.mu.Unlock()

	if reply.Drop {
		hj, ok := w.(http.Hijacker)
		if !ok {
			panic("testutil: response writer does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
		return
	}

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for k, vs := range reply.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/xml")
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}
