// Package isolate runs workload files in isolated workers that share no
// memory with the coordinator. Workers receive a Request and report back only
// through Messages: batches of lines followed by one final Result. Workers are
// either goroutine actors with private mailboxes or child processes speaking
// the framed protocol over stdin and stdout.
package isolate
