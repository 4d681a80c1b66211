// Package ensure maintains the server.cfg helper files of a resource.
//
// The per-resource _ADD_TO_SERVER_CFG.txt is rewritten every time. The master
// list _ALL_ENSURES.txt collects one ensure line per built resource and is
// only ever appended to; it lives next to the resource folder when that
// location is writable and inside the resource otherwise.
package ensure
