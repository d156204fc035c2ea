// Package identity derives content-addressable identifiers for canonical
// catalog entities.
//
// Keys are UUIDv5 hashes of normalized attribute strings under a fixed
// application namespace, so identical attributes always produce the identical
// ID on any machine with no registry round trip. Case and surrounding
// whitespace do not affect the result.
package identity
