// Package engine sequences detection, recommendation, selection and
// script generation over one tool catalog.
package engine
