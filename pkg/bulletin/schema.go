package bulletin

import "fmt"

// Redis key pattern helpers
//
// Key pattern: muster:{instance_name}:{entity}:{id}
// Channel pattern: muster:{instance_name}:{event_type}_events

// StandupKey returns the Redis key for a published standup.
// Pattern: muster:{instance_name}:standup:{standup_id}
func StandupKey(instanceName, standupID string) string {
	return fmt.Sprintf("muster:%s:standup:%s", instanceName, standupID)
}

// StandupIndexKey returns the Redis key for the sorted set of standup ids.
// Pattern: muster:{instance_name}:standups
func StandupIndexKey(instanceName string) string {
	return fmt.Sprintf("muster:%s:standups", instanceName)
}

// AgendaKey returns the Redis key holding the latest agenda for a ticket.
// Pattern: muster:{instance_name}:agenda:{ticket_id}
func AgendaKey(instanceName, ticketID string) string {
	return fmt.Sprintf("muster:%s:agenda:%s", instanceName, ticketID)
}

// EventsChannel returns the Pub/Sub channel announcing new bulletin records.
// Pattern: muster:{instance_name}:bulletin_events
func EventsChannel(instanceName string) string {
	return fmt.Sprintf("muster:%s:bulletin_events", instanceName)
}
