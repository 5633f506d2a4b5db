// Package telegram is a minimal Telegram Bot API client covering what the
// bot needs: long-poll update fetching, text replies, and document upload.
//
// The client performs a single attempt per GetUpdates call; bounded retry
// and backoff for fetching is owned by the ingestion loop. Outbound sends
// carry their own short retry, matching how operators expect replies to
// survive a transient network blip.
//
// Transient transport failures are wrapped in ErrTransport so callers can
// distinguish them from Bot API rejections (ErrAPIRejected).
package telegram
