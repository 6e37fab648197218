// Package leaktest configures goleak for test binaries that link the
// keyring.
package leaktest

import "go.uber.org/goleak"

// Options ignores the session bus connections the keyring backends open from
// their init functions. Those live for the whole process on any desktop with
// a D-Bus session.
func Options() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction("github.com/godbus/dbus.(*Conn).inWorker"),
		goleak.IgnoreAnyFunction("github.com/godbus/dbus.(*Conn).outWorker"),
		goleak.IgnoreAnyFunction("github.com/godbus/dbus/v5.(*Conn).inWorker"),
		goleak.IgnoreAnyFunction("github.com/godbus/dbus/v5.(*Conn).outWorker"),
	}
}
