// Package tasks holds the durable job definitions run by the mailforge
// worker: delivery of queued raw messages and pruning of downloaded
// attachments.
package tasks
