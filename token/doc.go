// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package token implements the one-time submission token ledger.

# Wire Format

A token is "<unix-ms>-<nonce>" where the nonce is 16 hex characters:

	tok, err := token.New(time.Now())

Issuance carries no server secret on purpose. A client-embedded key is
observable by the sender, so HMAC-binding the token to the payload would
provide no integrity; the design relies on one-time use plus the independent
human-verification and behavior signals instead.

# Consumption

	ledger := token.NewLedger(db, 120*time.Second, 30*time.Second)
	if err := ledger.ValidateFormat(tok, now); err != nil { ... }
	fresh, err := ledger.Consume(ctx, tok, now)

Consume inserts into used_token; a unique-constraint violation means the
token was already spent and the submission is a replay. For any token the
sequence Consume, Consume yields (true, false).

# Reclamation

Cleanup deletes rows whose expiry has passed. Expired tokens fail
ValidateFormat on age alone, so reclamation never reopens a replay window.
*/
package token
