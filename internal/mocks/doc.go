// Package mocks provides test doubles for the service's interfaces.
//
// Each mock uses function fields for custom behaviour and plain fields for the
// common case, so a test sets only what it needs:
//
//	jwtSvc := &mocks.MockJWTService{ValidateErr: auth.ErrExpiredToken}
//
// Mocks that record calls are safe for concurrent use, because the code under
// test often calls them from background goroutines.
package mocks
