// Package operations records what a run did.
//
// RunManifest is the single record of a run: its identity and timing, the
// stages it went through, every sample with the checksum of the report that
// was read, and every artifact written to the results tree. It is saved as
// JSON next to the tables and charts so a later reader can tell which
// inputs produced them.
package operations
