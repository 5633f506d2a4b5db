package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Update is one inbound event from the Bot API.
//
// The Bot API guarantees update_id is monotonically increasing; the
// ingestion loop relies on that for deduplication.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is the message payload of an update. Updates without a message
// (edited messages, channel posts) carry a nil Message and are skipped by
// the ingestion loop.
type Message struct {
	Chat Chat   `json:"chat"`
	From *User  `json:"from,omitempty"`
	Text string `json:"text,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// User identifies the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
}

// GetUpdates fetches a batch of queued updates from the Bot API.
//
// A positive offset asks the server to discard every update with an id
// below it, which is how processed updates are acknowledged; zero fetches
// whatever is queued. One attempt only: bounded retry lives in the
// ingestion loop.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - offset: First update id to return, or 0 for no offset
//
// Returns:
//   - []Update: The queued updates, possibly empty
//   - error: ErrTransport on network failure, ErrAPIRejected on ok=false
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	values := url.Values{}
	if offset > 0 {
		values.Set("offset", strconv.FormatInt(offset, 10))
	}

	result, err := c.postForm(ctx, c.httpClient, "getUpdates", values)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("%w: getUpdates: decoding result: %w", ErrTransport, err)
	}

	return updates, nil
}
