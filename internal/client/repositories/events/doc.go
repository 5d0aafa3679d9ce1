// Package events persists authentication outcomes in the local SQLite
// journal until they are forwarded to the analytics server.
package events
