package bramble

// Version is the library version, overridable at link time with
// -ldflags "-X github.com/bramblebt/bramble.Version=...".
var Version = "0.4.0-dev"
