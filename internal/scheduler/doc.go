// Package scheduler detects schedule conflicts between tables a person has
// joined. The detector is pure and safe for concurrent use.
package scheduler
