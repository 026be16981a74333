// Package roomsync is the client-side data layer for encrypted rooms: the
// HTTP API client, the scene-version cache, and the read-reconcile-write
// save cycle. The room key never leaves this layer's callers; the server
// only ever sees the sealed payload.
package roomsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/skomarov/boardkeeper/internal/common"
)

// RemoteRoom is the wire shape of an encrypted room payload.
type RemoteRoom struct {
	SceneVersion int64  `json:"sceneVersion"`
	IV           []byte `json:"iv"`
	Ciphertext   []byte `json:"ciphertext"`
}

// Client talks to the server's room endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

// GetRoom fetches the stored payload, or common.ErrNotFound for a room that
// has never been saved.
func (c *Client) GetRoom(ctx context.Context, roomID string) (*RemoteRoom, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v2/rooms/"+roomID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get room: %v", common.ErrStorage, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: get room: status %d", common.ErrStorage, resp.StatusCode)
	}

	room := &RemoteRoom{}
	if err := json.NewDecoder(resp.Body).Decode(room); err != nil {
		return nil, fmt.Errorf("%w: decode room: %v", common.ErrStorage, err)
	}
	return room, nil
}

// PutRoom upserts the full payload.
func (c *Client) PutRoom(ctx context.Context, roomID string, room *RemoteRoom) error {
	body, err := json.Marshal(room)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v2/rooms/"+roomID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: put room: %v", common.ErrStorage, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: put room: status %d", common.ErrStorage, resp.StatusCode)
	}
	return nil
}
