// Package identity provides multi-tenant identity primitives: a claims
// authorization registry, a crash-safe file-backed record store, and JWT
// issuance/verification for an external HTTP layer.
//
// Record store:
//   - Store keeps the canonical in-memory state for users, clients,
//     organizations, and groups, plus the claims registry. Every mutation is
//     persisted through a temp-file-then-rename write before it is committed
//     to memory, so readers never observe partially written files and a
//     failed write leaves both disk and memory untouched.
//   - Users are stored one JSON file per user under a directory named after
//     their primary organization. Clients, organizations, and groups live in
//     single collection documents.
//
// Claims registry:
//   - The registry is the authoritative document of every known custom claim
//     and its visibility rule. A single shared filter decides, per user and
//     per claim, admission into loaded records and issued tokens. Unknown
//     claim keys are dropped with a warning, never rejected.
//
// Tokens:
//   - TokenService signs and verifies HS256 JWTs carrying subject identity,
//     organization, admin scopes, and the filtered claim set. Tokens are
//     stateless; there is no revocation list. Audience checks are left to the
//     caller on purpose.
//
// Reload:
//   - ReloadController listens for an external signal (SIGHUP by default) and
//     atomically swaps the store's in-memory snapshot for a freshly loaded
//     one. A failed reload logs and keeps the previous snapshot serving.
package identity
