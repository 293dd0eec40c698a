// Package header provides header filtering for the notechat relay.
//
// The relay sits between the chat client and the endpoint named in each
// envelope:
//
//	Client <--> Relay <--> Endpoint
//
// and each leg negotiates compression, hops and credentials on its own.
package header

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler manages headers between relay connections.
type Handler struct{}

// NewHandler creates a new header Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RequestIDHeader carries the relay's id for one forwarded request.
const RequestIDHeader = "X-Request-Id"

// skipRequest is the set of request headers (client --> relay --> endpoint)
// that are not forwarded.
var skipRequest = map[string]struct{}{
	// Hop-by-hop headers: only meaningful for a single transport-level connection.
	"Connection":        {},
	"Keep-Alive":        {},
	"Transfer-Encoding": {},
	"Upgrade":           {},

	// Rewritten by http.Transport to match the endpoint URL.
	"Host": {},

	// Stripped so that http.Transport negotiates gzip itself and hands back
	// a decompressed body.
	"Accept-Encoding": {},

	// The endpoint credential comes from the envelope, never from the
	// client's own request to the relay.
	"Authorization": {},

	// Describes the envelope, not the forwarded payload.
	"Content-Length": {},
}

// skipResponse is the set of endpoint response headers (client <-- relay <-- endpoint)
// that are not copied back to the client.
var skipResponse = map[string]struct{}{
	"Connection": {},

	// fasthttp manages chunked transfer encoding for the client-facing
	// response independently.
	"Transfer-Encoding": {},

	// The relay always reads a decompressed body.
	"Content-Encoding": {},

	// Fiber computes the final length.
	"Content-Length": {},
}

// SetUpstreamRequestHeaders copies request headers from the Fiber context to
// the outgoing http.Request, filtering headers that the relay should not forward.
func (h *Handler) SetUpstreamRequestHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := http.CanonicalHeaderKey(string(key))
		if _, skip := skipRequest[k]; !skip {
			req.Header.Set(k, string(value))
		}
	})
}

// SetClientResponseHeaders copies response headers from the endpoint's
// http.Response to the Fiber context, filtering headers that the relay should
// not forward back down to the client.
func (h *Handler) SetClientResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for k, v := range resp.Header {
		if _, skip := skipResponse[http.CanonicalHeaderKey(k)]; !skip {
			c.Set(k, strings.Join(v, ", "))
		}
	}
}
