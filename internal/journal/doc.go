// Package journal keeps a local SQLite record of every temporary account a
// run creates. A run records the account before the realm files are touched
// and records the outcome after cleanup, so an entry without an outcome
// points at an account that an interrupted run may have left behind.
package journal
