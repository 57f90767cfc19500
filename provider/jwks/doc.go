// Package jwks adapts a JWKS-publishing identity provider (Firebase Auth,
// Auth0, Cognito and friends) to the newsroom push contract.
//
// The host application forwards raw provider-issued ID tokens to
// Provider.Notify; the adapter verifies the signature against the remote key
// set, maps the claims to a newsroom.Principal, and emits the transition to
// every registered listener. Verification failures emit an error so the
// session store fails closed to signed-out.
package jwks
