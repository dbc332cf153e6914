// Package textbelt is a typed client for the Textbelt SMS API
// (https://textbelt.com).
//
// The client issues one synchronous HTTP request per operation and reports
// every failure through a single *Error value carrying a Kind, so callers
// branch on one error shape regardless of whether the failure happened
// before the call (validation), on the wire (network, non-2xx status) or
// while decoding the response (parse). The remote API's own success flag is
// response data, not an error.
//
// Inbound reply webhooks are authenticated with WebhookVerifier, which
// recomputes the HMAC-SHA256 signature over the request timestamp and raw
// body and only parses the payload once the signature matches.
package textbelt
