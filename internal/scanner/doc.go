// Package scanner detects the technologies a project directory uses.
//
// A Scanner walks the tree once, building a presence index and an
// extension census, then evaluates an ordered battery of Rules against it:
// manifest presence, extension census, structured manifest parsing (see
// package manifest), content grep and cross-signal conjunctions. Every
// rule contributes to one monotonic set of flags. Content grep reads each
// eligible file once on a bounded worker pool.
package scanner
