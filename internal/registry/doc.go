// Package registry connects output sinks compiled into the binary with the
// sink blocks named in a job file.
//
// Each sink module registers a named factory together with the Go type of
// its options. At startup the registry is validated so that every options
// struct can be decoded from HCL, and every sink a job asks for exists.
package registry
