// Package inbound exposes the gateway over HTTP: the auth surface used
// by the login modal and the operation surface used by swarm peers.
package inbound
