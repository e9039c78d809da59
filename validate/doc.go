// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package validate checks submission payloads against the option sets and
structural rules.

All violations are collected and returned together so the client learns
everything wrong in one round trip. Enum values must match an option string
exactly - no trimming or coercion on the comparison path. Unknown keys,
top-level or inside behaviorData, are violations too.
*/
package validate
