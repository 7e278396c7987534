/*
Package authsdk is a Go client for the BarTab authentication service.

# Overview

SDKClient wraps the public JSON endpoints. A successful login yields a
Session holding the session token the service set in its "jwt" cookie:

	client := authsdk.NewSDKClient("https://auth.example.com")

	err := client.Signup(ctx, authsdk.SignupRequest{
		Email:             "bob@example.com",
		Password:          "correct horse",
		RequiresTwoFactor: true,
	})

	session, err := client.Login(ctx, "bob@example.com", "correct horse")

# Two-factor login

Accounts with two-factor enabled get a *TwoFactorRequiredError from Login.
The code is emailed to the user; pass it back with the error:

	session, err := client.Login(ctx, email, password)
	var pending *authsdk.TwoFactorRequiredError
	if errors.As(err, &pending) {
		session, err = client.VerifyTwoFactor(ctx, pending, codeFromEmail)
	}

# Sessions

Other services validate a token they were handed with VerifyToken. A Session
can check itself and log out, after which the token is rejected everywhere:

	ok, err := client.VerifyToken(ctx, session.Token())
	err = session.Logout(ctx)

# Errors

Failed requests return *Error carrying the HTTP status and the service's
error code (for example "incorrect_credentials" or "rate_limit_exceeded").
*/
package authsdk
