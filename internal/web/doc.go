// Package web serves the checklist UI over HTTP forms. It is the request
// driver for the core: each request carries a cookie-identified session
// bag, the session state machine decides which screen the request may
// reach, and service outcomes drive every transition.
package web
