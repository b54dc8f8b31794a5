//go:build !dev

package main

// authBypass skips the login view entirely. It can only be true in a
// binary built with the dev tag; production builds compile this constant.
const authBypass = false
