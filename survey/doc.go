// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package survey owns persistence of accepted submissions and the read side
of the trigger-maintained aggregate.

Gateway.Insert writes one survey_response row under a statement time bound
and confirms success by reading back the generated identity. It never
retries: a timed-out write may have committed, and a retry would store the
answer twice. StatsReader serves the aggregate_stats row, briefly cached in
Redis when configured; cache failures degrade to direct reads.
*/
package survey
