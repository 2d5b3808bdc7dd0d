// Package merger consolidates combined events that share a logical event
// id. A producer may emit more than one partial event for the same id
// (for example, a forced timeout drain followed later by the remaining
// contributor's fragment); the merger accumulates them into one record.
package merger
