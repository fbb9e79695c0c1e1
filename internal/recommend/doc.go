// Package recommend maps detected technologies to grouped tool
// recommendations. The mapping is a pure function of the detection, the
// catalog and the shell dialect.
package recommend
