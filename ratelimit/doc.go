// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ratelimit throttles aggregate submission traffic.

The limiter keeps per-minute counters in the shared rate_window table, so
every serving instance draws from the same budget with no coordination
beyond the store itself. There is no per-user tracking - respondents are
anonymous, so identity-keyed limiting has nothing stable to key on.

On storage errors the limiter fails open: throttling protects the write
path, it must not become a second way for the service to be down.
*/
package ratelimit
