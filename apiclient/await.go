package apiclient

import (
	"context"
	"fmt"
	"io"
	"time"
)

const awaitPollInterval = time.Millisecond * 100

// AwaitService polls the specified path until the API returns any response with a status
// below 500, or the timeout elapses. It writes a progress dot for every attempt.
func (c *Client) AwaitService(ctx context.Context, path string, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to API at %s%s", c.baseURL, path)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		result := c.Call(ctx, Request{Method: "GET", Path: path, Timeout: timeout})
		if result.Status != 0 && result.Status < 500 {
			fmt.Fprintln(output)
			fmt.Fprintf(output, "API responded with status %d\n", result.Status)
			return nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			if result.Status != 0 {
				return fmt.Errorf("timed out, API last returned status %d", result.Status)
			}
			return fmt.Errorf("timed out, result of last query was: %s", result.Error)
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(output)
			return ctx.Err()
		case <-time.After(awaitPollInterval):
		}
	}
}
