// Package nmclean ties the stages of a cleanup run together.
//
// It scans a tree for target directories with bounded parallelism, resolves
// their sizes in one bulk pass, filters them by age and size, and sorts them
// for presentation. Deletion of the resulting set is a separate step.
package nmclean
