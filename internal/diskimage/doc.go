// Package diskimage exposes the filesystem inside a raw disk image as a
// narrow, read-only tree of entries.
//
// The scanning pipeline only ever sees the Entry interface, so it has
// zero knowledge of on-disk formats. The concrete implementation sits
// on top of github.com/diskfs/go-diskfs; an io/fs adapter is provided
// for local directory trees and tests.
package diskimage
