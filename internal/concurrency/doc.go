// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread creation primitives for hiothread: run-once work packaging, the
// startup rendezvous and the per-platform OS thread backend. The backend is
// selected by build tags; there is no runtime fallback.
package concurrency
