// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package behavior scores client-reported interaction telemetry.

Each threshold in Policy is an independent necessary condition: too-short
dwell, stale session, long idle gap, too few pointer moves (desktop) or
touch events (mobile), too few clicks. Any single violation rejects; there
is no weighted score to tune. The device class comes from the declared
User-Agent and only switches which interaction counter applies.

Telemetry is self-reported and forgeable. The heuristics raise the cost of
naive automation; the externally verified challenge is the stronger check.
*/
package behavior
