// Package config holds bootgate's settings.
//
// Settings live in $HOME/.bootgate/config.yaml, created with defaults on
// first run, and can be replaced with --config. Keys:
//
//	keys.table               key table file (.pem, .words, .yaml); empty = embedded keys
//	keys.profile.l           DSA p size in bits (default 1024)
//	keys.profile.n           DSA q size in bits (default 160)
//	modhash.table            module hash table (.sha1, .hex, .txt, .bin); empty = embedded
//	modhash.max_module_size  largest module accepted, bytes (default 4 MiB)
//	bundle.max_content_size  largest bundle payload read, bytes (default 64 MiB)
//
// Relative table paths in the config file are resolved inside
// $HOME/.bootgate and may not escape it. Paths passed with --key-table and
// --module-table are relative to the working directory. Absolute paths are
// used as given.
//
// Whoever can rewrite a table decides what boots, so loaded tables are
// checked with CheckTrustFile and private keys are written owner-only.
package config
