// Package bridge implements the gateway: the single entry and exit point
// between the embedded page and native capability providers.
//
// Each inbound command moves through a fixed lifecycle:
//
//	Received -> Authorized -> Dispatched -> Resolved   (terminal)
//	Received -> Rejected                               (terminal)
//	Dispatched -> Cancelled                            (terminal)
//
// Received covers decode, registry lookup, and argument binding; failures
// reject with MalformedCommand or UnknownCommand before any provider is
// involved. Authorization consults the policy enforcer against live flag
// state; denials reject with the enforcer's typed reason. Dispatched requests
// are held in the correlation table until the provider resolves them or page
// lifecycle cancels them.
//
// The gateway never blocks the calling context. Synchronous providers resolve
// inline inside Invoke; asynchronous providers (biometric prompt, NFC scan)
// call the resolution callback later from their own goroutine. Either way the
// page-facing shape is identical: submit a request, eventually receive exactly
// one result.
package bridge
