// Package bulletin stores published standups and kickoff agendas in Redis so
// that other tools can pick them up.
//
// # Redis Schema
//
// All keys and channels are namespaced by instance name so several teams can
// share one Redis server.
//
// Standups: muster:{instance}:standup:{standup_id} (hash)
// Standup index: muster:{instance}:standups (sorted set scored by published_at_ms)
// Agendas: muster:{instance}:agenda:{ticket_id} (string, latest wins)
//
// Pub/Sub channel: muster:{instance}:bulletin_events
//
// Every publish writes the record first and then announces it on the channel
// with a small JSON notice carrying the kind and id of the record.
//
// # Usage Example
//
//	opts, _ := redis.ParseURL("redis://localhost:6379/0")
//	client, err := bulletin.NewClient(opts, "default")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	standup, err := client.PublishStandup(ctx, "2025-11-01", "09:00 Europe/Tallinn", payload)
package bulletin
