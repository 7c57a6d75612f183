// Package auth is the authentication and session core of the report admin
// backend: credential verification, peppered PBKDF2 password storage,
// stateless HMAC-signed session tokens, login rate limiting, and
// security-relevant audit logging.
//
// Sessions are stateless by design. Handlers run as independent, possibly
// non-sticky invocations, so a token must be verifiable from its signature
// and expiry alone; there is no server-side session store. Tokens carry
// identity, not authority: privileged handlers re-read the account row
// before trusting the role or group embedded in a token, which closes the
// staleness window without a revocation list.
//
// Rate limiting:
//   - RateLimiter is a mutex-guarded, bounded in-memory table keyed by
//     source address plus username. It is process-local; under a
//     multi-instance deployment the counters are not shared. Backing it
//     with a shared store is an open scaling question, not something this
//     package papers over.
//
// Audit logging:
//   - ActivitySink consumes login_success/login_failure events. Sinks run
//     best-effort (errors are logged) so a failed audit write never blocks
//     or fails the surrounding authentication decision.
package auth
