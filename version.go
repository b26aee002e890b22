package docflows

// Version is the release of the module, overridden at link time with
// -ldflags "-X github.com/aretw0/docflows.Version=...".
var Version = "0.1.0-dev"
