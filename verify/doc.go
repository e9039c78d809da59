// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package verify checks human-verification tokens with an external
Turnstile-style siteverify service.

The client fails closed: an unreachable service, an unexpected status, or a
malformed answer all reject the submission (ErrUnavailable) rather than
waving it through. Dev mode with no configured secret is the only bypass.
*/
package verify
