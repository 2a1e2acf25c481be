/*
Package relaysdk is the client side of the authgate gateway.

Applications registered with the gateway receive two kinds of credentials:

  - provider token relays, POSTed as JSON to the application's callback URL
    and signed with the shared webhook secret in the X-Auth-Signature header;
  - identity assertions, appended as ?token= when the gateway redirects a
    redeemed magic link to the application.

Receiving relays:

	http.Handle("/oauth/relay", relaysdk.Handler(secret, func(ctx context.Context, p relaysdk.RelayPayload) error {
		return saveRefreshToken(ctx, p.Provider, p.Tokens.RefreshToken)
	}))

Accepting a magic link hand-off:

	claim, err := relaysdk.VerifyAssertion(r.URL.Query().Get("token"), secret)
	if err != nil {
		http.Error(w, "access denied", http.StatusForbidden)
		return
	}
	startSession(w, claim.Email)

The Client type wraps the gateway's public status and health endpoints.
*/
package relaysdk
