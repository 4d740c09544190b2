// Package sanitizer normalizes free-form scheduling data before it is scored
// or stored.
//
// All functions are idempotent. Skills and supplies are compared as
// lower-case snake_case tokens, so "AC Repair", "ac-repair" and "ac_repair"
// all match the same requirement.
package sanitizer
