// Package dns is the hosted DNS service client.
//
// Zone responses are parsed with ZoneSchema: counters and TTLs become
// integers, the remaining zone attributes stay strings and the hosts
// element becomes a list of host records, empty when the zone has none.
package dns
