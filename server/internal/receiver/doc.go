// Package receiver accepts LineSnapshot JSON posted by pharmames-agent
// instances at POST /api/v1/lines/snapshots.
//
// A snapshot is validated (source_id, timestamp and a known state are
// required), stored as the line's latest state, counted into the findings
// metric and evaluated by the alerts engine. Accepted snapshots get 202;
// malformed bodies 400 and invalid snapshots 422, which the agent's shipper
// treats as permanent and discards.
package receiver
