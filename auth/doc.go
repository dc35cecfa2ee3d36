/*
Package auth is for authentication. It contains the Provider interface, its scs-based implementation SessionProvider, and the Gate which protects the authoring workspace.

Sessions

A Session is the signed-in state of one browser (client). It carries a signed ID token which is verified again on every read, so a disabled user or an expired token yields no session.

Every browser gets a random client id in its scs session when it signs in. Push subscriptions are keyed by that client id, so an open authoring page learns about a sign-out from another tab of the same browser.

Gate

A Gate starts in the Checking state and moves to Authenticated or Anonymous as soon as the provider delivers the current session. It follows every later change until it is closed.
*/
package auth
