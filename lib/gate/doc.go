// Package gate is the host-facing entry point: one object that holds the
// trusted key table and the module hash table and answers the questions a
// loader asks before trusting bytes.
//
//	g, err := gate.New(config.DefaultGateConfig())
//	if err != nil {
//		// Tables could not be loaded; refuse to boot.
//	}
//	if err := g.VerifyImage(kernel, sig, keys.KernelKey); err != nil {
//		// Do not jump to kernel.
//	}
//	if err := g.LoadModule(blob); err != nil {
//		// Do not load blob.
//	}
//
// Every error means "not verified". There are no retries and no partial
// results. Errors from the arithmetic core satisfy types.IsFatal and should
// abort the boot instead of falling back to another image.
package gate
