// Package core provides the business logic of the Leopold toy shop.
//
// This package orchestrates the pure building blocks (csvimport, orderparse,
// shop) and the outside world (sheet source, bot, AI assistant, KV-backed
// state). It has no HTTP knowledge and can be used by web handlers, the
// background scheduler, or tests without modification.
//
// # Catalog Sync
//
// [Service.SyncCatalog] downloads the published sheet, tokenizes it,
// imports rows into catalog entries and merges them by normalized name:
//
//  1. Fetch: the body is size-capped, BOM-stripped and UTF-8 sanitized
//  2. Tokenize and Import: header roles resolved from the keyword table
//  3. Merge: new names appended, new categories appended, one snapshot write each
//
// # Order Sync
//
// [Service.SyncOrders] reads the bot's recent history, recognizes order
// notifications and prepends the ones whose ids are not yet known.
//
// Both syncs share a single-slot [SyncLimiter], so they never interleave.
// A sync that cannot start within the configured wait fails with
// [ErrTooManySyncs].
//
// # Checkout
//
// [Service.PlaceOrder] validates the checkout, snapshots the ordered
// entries from the catalog and records the order. The channel notification
// is sent in the background and its failure is only logged.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a code prefix for support reference:
//
//   - SRC: sheet problems (no rows, no columns, too large, not published)
//   - NET: bot and assistant upstream problems
//   - VAL: invalid input
//   - AUTH: login and session problems
//   - SYNC: a sync is already running
//   - NF: unknown toy, category or order
package core
