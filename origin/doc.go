// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package origin admits browser requests from the configured web origins only.

Matching is exact-string against the Origin header, falling back to the
origin component of Referer. Prefix, suffix, and substring matches are all
rejections: "https://site.example.evil.example" never passes for
"https://site.example". Requests carrying neither header are rejected.
*/
package origin
