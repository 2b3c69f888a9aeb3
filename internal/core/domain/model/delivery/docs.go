// Package delivery contains the Delivery aggregate and its lifecycle state
// machine. Status transitions follow a fixed, total table
// (pending → assigned → en_route → delivered); everything else is rejected.
package delivery
