//go:build !(windows && cgo)

// Command eternal_redirect only builds as a Windows DLL with cgo enabled.
package main

func main() {}
