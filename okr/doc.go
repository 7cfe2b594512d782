// Package okr holds the pure rules of the objective tracker: key result and
// objective progress, status classification, quarter and month bucketing,
// ownership checks and the read-side aggregations behind the dashboard,
// report and directory views.
//
// Nothing in this package touches storage; services load collections from
// the repositories and hand them to these functions.
package okr
