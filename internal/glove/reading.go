package glove

import "time"

// Reading is one timestamped sample: one value per channel, calibrated
// degrees or raw counts depending on the session configuration.
type Reading struct {
	Time   time.Time `json:"time"`
	Values []float64 `json:"values"`
}
