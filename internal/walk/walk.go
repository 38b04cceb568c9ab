// Package walk traverses a disk image's filesystem tree and yields its
// leaf entries.
//
// Forensic images can nest directories thousands of levels deep, so the
// traversal keeps its own work list instead of recursing on the call
// stack. Unreadable directories are reported and skipped; they never
// abort the walk.
package walk

import (
	"context"

	"pixhunt/internal/diskimage"
)

// Func is invoked once per leaf entry, in depth-first discovery order.
// Returning an error stops the walk and propagates the error.
type Func func(entry diskimage.Entry) error

// ErrorFunc is invoked when a directory's children cannot be listed.
// The subtree is skipped and the walk continues.
type ErrorFunc func(entry diskimage.Entry, err error)

// Leaves walks the tree rooted at root depth-first and calls fn for
// every non-directory entry exactly once. Sibling order is the order
// the provider reports children. The context is checked between
// entries; on cancellation the walk stops and returns ctx.Err().
func Leaves(ctx context.Context, root diskimage.Entry, onError ErrorFunc, fn Func) error {
	if root == nil {
		return nil
	}

	stack := []diskimage.Entry{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !entry.IsDir() {
			if err := fn(entry); err != nil {
				return err
			}
			continue
		}

		children, err := entry.Children()
		if err != nil {
			if onError != nil {
				onError(entry, err)
			}
			continue
		}
		// Push in reverse so the first-reported child is visited first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}
