// Package billing wires the subscription engine into an HTTP module:
// checkout, plan changes, cancellation and the gateway webhook, ready
// to mount on a chi router.
//
// Payments never complete synchronously. Checkout and upgrade return
// gateway redirects or charge the stored token; the authoritative
// state change always arrives through the webhook endpoint.
package billing
