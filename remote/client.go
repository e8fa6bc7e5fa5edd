package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nasdf/campus/document"
)

// ErrStatus is returned when the server responds with an unexpected status.
var ErrStatus = errors.New("unexpected response status")

// Client reads and writes documents served by Handler.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Get implements ref.Store.
func (c *Client) Get(ctx context.Context, collection, id string) (document.Document, bool, error) {
	res, err := c.do(ctx, http.MethodGet, collection, id, nil)
	if err != nil {
		return nil, false, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		doc, err := decodeDocument(res.Body)
		if err != nil {
			return nil, false, err
		}
		return doc, true, nil
	case http.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, statusError(res)
	}
}

// Set implements ref.Writer.
func (c *Client) Set(ctx context.Context, collection, id string, doc document.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := c.do(ctx, http.MethodPut, collection, id, body)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		return statusError(res)
	}
	return nil
}

// Delete removes the document. Deleting a missing document is not an error.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	res, err := c.do(ctx, http.MethodDelete, collection, id, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		return statusError(res)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, collection, id string, body []byte) (*http.Response, error) {
	u := c.baseURL + "/documents/" + url.PathEscape(collection) + "/" + url.PathEscape(id)

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

func statusError(res *http.Response) error {
	var body errorResponse
	data, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return fmt.Errorf("%w %d: %s", ErrStatus, res.StatusCode, body.Error)
	}
	return fmt.Errorf("%w %d", ErrStatus, res.StatusCode)
}

// decodeDocument decodes a JSON object keeping integers exact.
func decodeDocument(r io.Reader) (document.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc == nil {
		return nil, errors.New("document must be a JSON object")
	}
	return document.Document(doc).Normalized(), nil
}
