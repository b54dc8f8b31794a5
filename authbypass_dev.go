//go:build dev

package main

// Development builds skip route-level auth so the dashboard can be worked
// on without a configured OAuth provider. Never ship a dev-tagged binary.
const authBypass = true
