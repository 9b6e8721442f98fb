// Package git provides a git implementation of the vcs.VCS interface.
//
// It automatically registers itself with the VCS registry on import.
//
// Usage:
//
//	import _ "github.com/adamlabadorf/afj/internal/vcs/git" // Auto-registers via init()
//
//	v, _, err := vcs.NewFactory().Ensure(ctx, dir)
//	if err != nil {
//	    return err
//	}
package git

import (
	"context"

	"github.com/adamlabadorf/afj/internal/vcs"
)

// init registers the git VCS implementation with the registry.
// This is called automatically when the package is imported.
func init() {
	vcs.Register(vcs.TypeGit, vcs.Driver{
		Marker: ".git",
		Binary: binary,
		Open: func(dir string) (vcs.VCS, error) {
			return New(dir)
		},
		Init: func(ctx context.Context, dir string) (vcs.VCS, error) {
			return Init(ctx, dir)
		},
	})
}
