// Package embedded carries the default trust material compiled into the
// binary: the trusted DSA public keys and the known-good module hash table.
//
// Key files live under assets/keys and are named "<index>-<name>.pem"; the
// numeric prefix fixes the key index. The module table lives at
// assets/modhash/modules.sha1 in the hex format read by modhash.ReadHexTable.
//
// The source tree ships both empty, so a stock build trusts no key and no
// module. Release builds drop their keys and table into assets before
// compiling, or point the configuration at external tables.
package embedded
