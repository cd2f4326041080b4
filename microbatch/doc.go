// Package microbatch groups tasks into small batches, e.g. to reduce the
// number of round trips. Used by adapter/graphite to batch events into
// Graphite plaintext-protocol writes.
package microbatch
