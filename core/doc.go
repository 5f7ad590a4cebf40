// Package core contains the canonical gateway domain: user identities,
// API key credentials and their activation lifecycle, ledger operations,
// and the orchestration service. Lower-level adapters (stores, ledger
// clients, transports) must depend on this package; core must not depend
// on storage-specific or transport-specific adapters.
package core
