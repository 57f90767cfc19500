// Package newsroom provides the identity, authorization, and content-lifecycle
// core for a multi-format publishing site (articles, videos, podcasts).
//
// Identity:
//   - An external identity provider pushes sign-in/sign-out transitions. The
//     Store observes those transitions, replays current state to new
//     subscribers, and fails closed (settles to signed-out) when the provider
//     reports an error mid-transition.
//   - Profiles map a provider-issued principal id to a locally persisted
//     UserProfile. A missing profile for a signed-in principal is a valid
//     transient state (provisioning race), never an error.
//
// Authorization:
//   - Roles are an ordered capability superset (admin > editor > writer >
//     reader). Role.Can is a pure total function over a static table so it can
//     be unit-tested without any session or storage wiring. Denial is a
//     boolean, not an error.
//
// Session context:
//   - SessionContext composes the Store, the Profiles repository, and the role
//     evaluator into one observable snapshot. Transitions are serialized: every
//     state change reaches all subscribers before the next external event is
//     processed, and an in-flight profile fetch is discarded when a newer
//     sign-in/sign-out supersedes it.
//
// The content catalog (articles, videos, podcasts, team roster) lives in the
// catalog subpackage; identity-provider adapters live under provider.
package newsroom
