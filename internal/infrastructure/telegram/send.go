package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// SendMessage delivers a text reply to a chat.
//
// The call is retried up to the configured attempt count with a fixed
// delay between attempts, so a reply survives a transient network blip.
//
// Parameters:
//   - ctx: Context for timeout/cancellation (also aborts the retry sleep)
//   - chatID: Destination chat
//   - text: Message body
//
// Returns:
//   - error: ErrSendFailed wrapping the last attempt's error
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	values := url.Values{}
	values.Set("chat_id", strconv.FormatInt(chatID, 10))
	values.Set("text", text)

	var lastErr error
	for attempt := 1; attempt <= c.sendAttempts; attempt++ {
		_, err := c.postForm(ctx, c.httpClient, "sendMessage", values)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < c.sendAttempts {
			select {
			case <-time.After(c.sendRetryDelay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrSendFailed, ctx.Err())
			}
		}
	}

	return fmt.Errorf("%w: after %d attempts: %w", ErrSendFailed, c.sendAttempts, lastErr)
}

// SendDocument uploads a file to a chat as a document attachment.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - chatID: Destination chat
//   - path: Filesystem path of the file to upload
//
// Returns:
//   - error: ErrFileNotFound if the file is missing, ErrTransport or
//     ErrAPIRejected on delivery failure
func (c *Client) SendDocument(ctx context.Context, chatID int64, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("opening document: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	part, err := writer.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.methodURL("sendDocument"), &body)
	if err != nil {
		return fmt.Errorf("%w: sendDocument: building request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.docClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sendDocument: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if _, err := decodeEnvelope("sendDocument", resp); err != nil {
		return err
	}
	return nil
}
