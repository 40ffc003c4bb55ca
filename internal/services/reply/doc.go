// Package reply holds the reply generators the message dispatcher can use.
package reply
