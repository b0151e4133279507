package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrDecode is wrapped by errors for response bodies that are not valid JSON
// of the expected shape.
var ErrDecode = errors.New("malformed response")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return e.Status
}

// JSON returns a Func that GETs baseURL+key and decodes the JSON body into T.
func JSON[T any](client *http.Client, baseURL string) Func[T] {
	if client == nil {
		client = http.DefaultClient
	}
	base := strings.TrimSuffix(baseURL, "/")
	return func(ctx context.Context, key string) (T, error) {
		var v T
		url := base + key

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return v, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return v, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, resp.Body)
			return v, &StatusError{URL: url, Status: resp.Status, Code: resp.StatusCode}
		}

		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			if ctx.Err() != nil {
				return v, ctx.Err()
			}
			return v, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return v, nil
	}
}
