// Package history keeps an optional audit trail of compiled policies in
// SQLite and prunes it on a retention schedule.
package history
