// Package size resolves the total size of many directories in one bulk pass.
//
// Two strategies are provided: Walker sums regular file sizes with a parallel
// fastwalk traversal per directory, and Du batches the paths into external
// `du -sk` invocations. Both bound their parallelism and never fail: a path
// whose size cannot be determined is simply absent from the result.
package size
