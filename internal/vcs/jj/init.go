// Package jj provides a Jujutsu (jj) implementation of the vcs.VCS interface.
//
// The implementation automatically registers itself with the VCS registry
// on import.
//
// Usage:
//
//	import _ "github.com/adamlabadorf/afj/internal/vcs/jj" // Auto-registers via init()
//
//	f := vcs.NewFactory(vcs.WithPreferredType(vcs.TypeJJ))
//	v, created, err := f.Ensure(ctx, dir)
package jj

import (
	"context"

	"github.com/adamlabadorf/afj/internal/vcs"
)

// init registers the jj VCS implementation with the factory.
// This is called automatically when the package is imported.
func init() {
	vcs.Register(vcs.TypeJJ, vcs.Driver{
		Marker: ".jj",
		Binary: binary,
		Open: func(dir string) (vcs.VCS, error) {
			return New(dir)
		},
		Init: func(ctx context.Context, dir string) (vcs.VCS, error) {
			return Init(ctx, dir)
		},
	})
}
