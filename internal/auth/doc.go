// Package auth provides account registration and login on top of the
// store and the credential cache. It is the only writer of user rows
// and the only place passwords are hashed.
package auth
