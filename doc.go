// Package membergate is an embeddable authentication engine for
// account-backed services: Argon2id credential verification, a single valid
// signed session token per account, and a graduated lockout that lengthens
// with every consecutive failed attempt.
//
// The engine is built with a fluent [Builder] and persists through a
// caller-supplied [Store]; ready-made implementations live in the
// sqlitestore and redistore packages.
//
//	store, _ := sqlitestore.Open("members.db")
//	engine, _ := membergate.New().
//		WithConfig(cfg).
//		WithStore(store).
//		Build()
//	defer engine.Close()
//
//	token, err := engine.Signin(ctx, "alice", "correct-horse")
//	identity, err := engine.Authenticate(ctx, token)
//
// Expected failures surface as package-level sentinel errors
// ([ErrInvalidCredentials], [ErrAccountLocked], [ErrTokenInvalid], …) and are
// matched with errors.Is.
package membergate
