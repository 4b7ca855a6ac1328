package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// ProbeHealth checks the engine sidecar's HTTP health endpoint. Used at
// startup only; the WebSocket reconnect loop owns liveness afterwards.
func ProbeHealth(ctx context.Context, baseURL string) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(strings.TrimRight(baseURL, "/") + "/health")

	deadline := time.Now().Add(3 * time.Second)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := fasthttp.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("engine health probe: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("engine health probe: status=%d", code)
	}
	return nil
}
