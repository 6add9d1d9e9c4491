// Package version reports build metadata for the unicourse binary.
//
// Release builds set the variables through ldflags:
//
//	go build -ldflags "\
//	  -X github.com/ncobase/unicourse/version.Version=1.2.3 \
//	  -X github.com/ncobase/unicourse/version.Branch=main \
//	  -X github.com/ncobase/unicourse/version.Revision=abc123 \
//	  -X 'github.com/ncobase/unicourse/version.BuiltAt=$(date)'"
//
// Values left at their defaults are completed from the VCS settings the go
// tool embeds in the binary, when present.
package version
