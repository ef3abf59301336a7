// Package keys holds the table of trusted DSA public keys that boot images
// are verified against.
//
// A key index selects one record; by convention index 0 is the root
// filesystem key and index 1 the kernel key. All records share one
// dsa.Profile.
//
// Tables are loaded at run time from one of three formats:
//
//   - PEM: PKIX "PUBLIC KEY" blocks, in order.
//   - words: the layout of the fixed-width tables compiled into boot loaders. Each
//     parameter is dumped big-endian, zero-extended to the profile width,
//     cut into 32-bit words and listed least significant word first.
//   - YAML: hex parameters plus the profile.
package keys
