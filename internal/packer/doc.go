// Package packer flattens classified files into a destination resource.
//
// Every stream asset lands directly in stream/ and every data asset directly
// in data/; source sub-folders are discarded. Name collisions are resolved by
// a Resolver that remembers names placed earlier in the same build and also
// checks the disk, so an existing file is never overwritten. Place performs
// the actual copy or move through internal/fileutil.
package packer
