package api

import (
	"context"
	"net/http"

	eventModel "github.com/technovus/client-go/internal/event/model"
)

// ListEvents fetches the event catalogue.
func (c *Client) ListEvents(ctx context.Context) ([]eventModel.Event, error) {
	var out []eventModel.Event
	if err := c.do(ctx, http.MethodGet, "/events", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
