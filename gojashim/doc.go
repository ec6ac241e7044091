// Package gojashim implements [gameshim.Host] over a [goja.Runtime], so the
// runtime-compatibility watchdogs can patch a real ECMAScript global scope.
//
// [Bind] installs the globals the page expects (window, performance,
// console, requestAnimationFrame, addEventListener, dispatchEvent,
// CustomEvent, location, confirm), polyfilling only what is missing. The
// runtime handle and session client are located lazily, as the globals
// UnityInstance and SFS2X, and a JavaScript exception thrown by either is
// returned to the watchdogs as a Go error.
//
// Like the runtime itself, a [Host] is not safe for concurrent use. Every
// method, and every timer callback, must run on the event loop goroutine.
package gojashim
