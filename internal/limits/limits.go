// Package limits defines the battery threshold values shared by the demo
// adapter (which generates samples around them) and the aggregator (which
// checks samples against them). Kept as its own package so adapter and
// stats don't need to depend on each other or on the config package.
package limits

// Battery holds the validity range for each measured quantity.
type Battery struct {
	CellVMin   float32
	CellVMax   float32
	PackVMin   float32
	PackVMax   float32
	CurrentMin float32
	CurrentMax float32
}
