// Package flist flattens hardware Flist files into a synthesis script.
//
// An Flist enumerates HDL source files, include directories and nested Flist
// references. Resolving one produces a linear list of synthesis tool read
// commands in depth-first, pre-order traversal order.
//
// # Line Forms
//
//	# comment            skipped (also // and /*)
//	+incdir+<dir>        include directory, optionally echoed
//	-F <path>            nested Flist, resolved in place
//	<file>.sv | <file>.v source file, one read command each
//
// Environment references ($NAME and ${NAME}) are expanded on every
// non-comment line before it is used.
//
// # Usage
//
//	r := flist.NewResolver(flist.Options{EmitIncdir: true})
//	res, err := r.ResolveFile(ctx, "rtl/top.Flist", os.Stdout)
//	if err != nil {
//	    if errors.Is(err, flist.ErrFileNotFound) {
//	        // a -F line names a file that does not exist
//	    }
//	    return err
//	}
//	fmt.Fprintf(os.Stderr, "%d commands, %d skipped\n", res.Commands, len(res.Skipped))
//
// A Resolver keeps no state between calls and may be shared by goroutines.
package flist
