package tracks

// ChannelMapping translates a track id into the engine channel that plays it.
// Every mute and query goes through Channel; nothing else does the arithmetic.
type ChannelMapping struct {
	Offset int
}

// Identity maps track id n to engine channel n.
var Identity = ChannelMapping{}

// Channel returns the engine channel for trackID.
func (m ChannelMapping) Channel(trackID int) int {
	return trackID + m.Offset
}
