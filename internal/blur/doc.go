// Package blur approximates Gaussian blur with a recursive first-order
// filter run forwards and backwards along each axis. Cost is linear in the
// number of pixels and independent of sigma.
//
// Borders are not padded, so pixels within a few sigma of an edge come out
// darker than a true convolution would produce.
package blur
