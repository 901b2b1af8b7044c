// Package auth provides pluggable bearer-token authentication for the mock
// Spark backend.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default voter decides
// when all authenticators abstain.
//
// Auth is implemented as HTTP middleware so that handlers stay free of
// credential handling, and so the client library's 401 path can be exercised
// against a realistic backend.
package auth
