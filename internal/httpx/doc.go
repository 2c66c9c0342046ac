// Package httpx provides the retrying HTTP fetcher.
//
// A Client performs single GET requests with a fixed per-request timeout and
// a small retry budget. Transport errors and HTTP 429 are retried with
// exponentially growing backoff; any other non-2xx status is treated as
// permanent and surfaced immediately as a *StatusError.
//
//	client := httpx.NewClient(httpx.DefaultOptions())
//	body, err := client.Fetch(ctx, "https://host/image.png")
package httpx
