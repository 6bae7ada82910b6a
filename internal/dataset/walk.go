package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// node is one visited filesystem entry. csv is the recursive CSV count for
// directories.
type node struct {
	name   string
	abs    string
	rel    string
	dir    bool
	size   int64
	parent int
	csv    int
}

type frame struct {
	abs    string
	rel    string
	parent int
}

// walk visits the tree under root using an explicit stack. The entries of
// one directory are recorded together in name order, then its subdirectories
// are expanded depth-first. Dot entries, archive metadata folders and
// symlinks are skipped. Only a failure to read root itself is an error;
// unreadable subdirectories are left out. Nodes are returned in visit order.
func walk(ctx context.Context, root string) ([]node, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir: %w", err)
	}

	var nodes []node
	stack := []frame{}
	stack = visitDir(root, "", -1, entries, &nodes, stack)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(top.abs)
		if err != nil {
			continue
		}
		stack = visitDir(top.abs, top.rel, top.parent, entries, &nodes, stack)
	}

	// Children always follow their parent, so a reverse pass folds every
	// directory's count into its ancestors.
	for i := len(nodes) - 1; i >= 0; i-- {
		if p := nodes[i].parent; p >= 0 {
			nodes[p].csv += nodes[i].csv
		}
	}
	return nodes, nil
}

// visitDir records the files of one directory and the directory nodes of its
// subdirectories. The subdirectory frames are pushed in reverse so the first
// name is popped first.
func visitDir(abs, rel string, parent int, entries []os.DirEntry, nodes *[]node, stack []frame) []frame {
	var dirs []frame
	for _, e := range entries {
		if skipEntry(e) {
			continue
		}
		childAbs := filepath.Join(abs, e.Name())
		childRel := filepath.ToSlash(filepath.Join(rel, e.Name()))

		switch {
		case e.IsDir():
			*nodes = append(*nodes, node{name: e.Name(), abs: childAbs, rel: childRel, dir: true, parent: parent})
			dirs = append(dirs, frame{abs: childAbs, rel: childRel, parent: len(*nodes) - 1})
		case e.Type().IsRegular():
			n := node{name: e.Name(), abs: childAbs, rel: childRel, parent: parent}
			if info, err := e.Info(); err == nil {
				n.size = info.Size()
			}
			if hasExt(n.name, ".csv") {
				n.csv = 1
			}
			*nodes = append(*nodes, n)
		}
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		stack = append(stack, dirs[i])
	}
	return stack
}
